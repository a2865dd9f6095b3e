// Package transport holds the wire types of the bot webhook.
package transport

// WebhookPayload is the inbound message shape posted by the WhatsApp
// gateway. The gateway has shipped both snake_case and camelCase
// routing identifiers; both spellings are accepted.
type WebhookPayload struct {
	Message struct {
		Text string `json:"text" validate:"max=4096"`
	} `json:"message"`
	User struct {
		Phone string `json:"phone" validate:"omitempty,max=32"`
	} `json:"user"`

	ProductID    string `json:"product_id" validate:"omitempty,max=64"`
	ProductIDAlt string `json:"productId" validate:"omitempty,max=64"`
	PhoneID      string `json:"phone_id" validate:"omitempty,max=64"`
	PhoneIDAlt   string `json:"phoneId" validate:"omitempty,max=64"`
}

// ProductIDValue returns whichever product id spelling was sent.
func (p WebhookPayload) ProductIDValue() string {
	if p.ProductID != "" {
		return p.ProductID
	}
	return p.ProductIDAlt
}

// PhoneIDValue returns whichever phone id spelling was sent.
func (p WebhookPayload) PhoneIDValue() string {
	if p.PhoneID != "" {
		return p.PhoneID
	}
	return p.PhoneIDAlt
}
