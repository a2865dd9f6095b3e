// Package whatsapp delivers outbound text messages through a Maytapi-style
// WhatsApp gateway. Delivery is best-effort: the caller logs failures and
// never retries.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

type sendMessageRequest struct {
	ToNumber string `json:"to_number"`
	Type     string `json:"type"`
	Message  string `json:"message"`
}

// NewClient creates a gateway client. Returns nil when no gateway is
// configured; a nil client drops messages silently.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppBaseURL() == "" {
		return nil
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.GetWhatsAppBaseURL(), "/"),
		token:   cfg.GetWhatsAppToken(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// SendText posts one text message to the recipient through the gateway
// instance identified by productID and phoneID.
func (c *Client) SendText(ctx context.Context, productID, phoneID, to, body string) error {
	if c == nil {
		return nil
	}

	payload := sendMessageRequest{
		ToNumber: to,
		Type:     "text",
		Message:  body,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/sendMessage", c.baseURL, productID, phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(data))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("x-maytapi-key", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Debug("whatsapp sent", "to", to)
	return nil
}
