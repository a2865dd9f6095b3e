// Package service implements the conversation state machine: it maps an
// inbound message plus the user's tracked menu position to an explicit
// outcome, triggering directory, order and stock lookups along the way.
package service

import (
	"context"
	"strings"

	"garment_whatsapp_backend/internal/bot/session"
	"garment_whatsapp_backend/internal/directory"
	"garment_whatsapp_backend/internal/orders"
	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
)

// Order categories selectable in the order-query menu.
const (
	CategoryShirting = "Shirting"
	CategoryJacket   = "Jacket"
	CategoryTrouser  = "Trouser"
)

// Directory resolves greetings and store permissions for a phone number.
type Directory interface {
	FindGreeting(ctx context.Context, phoneNumber string) (*directory.Greeting, error)
	FindPermittedStores(ctx context.Context, phoneNumber string) ([]string, error)
}

// OrderLookup locates one order number across the ordered source list.
type OrderLookup interface {
	FindOrderStatus(ctx context.Context, orderNumber, category string) (orders.Status, error)
}

// StockLookup answers quality availability queries.
type StockLookup interface {
	FindStock(ctx context.Context, qualities []string) (map[string]map[string]string, error)
}

// Messenger delivers one text message, best effort.
type Messenger interface {
	SendText(ctx context.Context, productID, phoneID, to, body string) error
}

// Inbound is one webhook message after transport-level cleanup.
type Inbound struct {
	From      string
	Text      string
	ProductID string
	PhoneID   string
}

// Outcome is the explicit result of a state-machine transition: either a
// reply text or deliberate silence. Tests assert silence directly rather
// than by absence.
type Outcome struct {
	Reply  string
	Silent bool
}

// ReplyText wraps a reply into an outcome.
func ReplyText(text string) Outcome { return Outcome{Reply: text} }

// Silence is the deliberate no-reply outcome.
func Silence() Outcome { return Outcome{Silent: true} }

// Service is the conversation state machine.
type Service struct {
	sessions  session.Store
	dir       Directory
	orders    OrderLookup
	stock     StockLookup
	messenger Messenger
	form      config.FormConfig
	log       *logger.Logger
}

// New creates the state machine service.
func New(sessions session.Store, dir Directory, orderLookup OrderLookup, stockLookup StockLookup, messenger Messenger, form config.FormConfig, log *logger.Logger) *Service {
	return &Service{
		sessions:  sessions,
		dir:       dir,
		orders:    orderLookup,
		stock:     stockLookup,
		messenger: messenger,
		form:      form,
		log:       log,
	}
}

// Respond handles one inbound message and delivers the reply when the
// outcome is not silent. Delivery failures are logged and dropped.
func (s *Service) Respond(ctx context.Context, in Inbound) Outcome {
	out := s.HandleMessage(ctx, in)
	if !out.Silent {
		if err := s.messenger.SendText(ctx, in.ProductID, in.PhoneID, in.From, out.Reply); err != nil {
			s.log.WithContext(ctx).DeliveryError(in.From, err)
		}
	}
	return out
}

// HandleMessage runs one state-machine transition. Shortcut commands
// (/menu, /stock, category shortcuts) reset the conversation from any
// state, including input-collecting ones; everything else dispatches on
// the tracked menu position. Unrecognized input with no tracked state is
// deliberately silent.
func (s *Service) HandleMessage(ctx context.Context, in Inbound) Outcome {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Silence()
	}

	switch strings.ToLower(text) {
	case "/menu", "/":
		s.setState(ctx, in.From, session.State{Menu: session.MenuMain})
		return ReplyText(s.greetingFor(ctx, in.From) + "\n\n" + mainMenuBody)
	case "/stock":
		s.setState(ctx, in.From, session.State{Menu: session.MenuStockQuery})
		return ReplyText(s.greetingFor(ctx, in.From) + "\n\n" + stockPromptBody)
	case "/shirting":
		return s.enterOrderNumberInput(ctx, in, CategoryShirting, true)
	case "/jacket":
		return s.enterOrderNumberInput(ctx, in, CategoryJacket, true)
	case "/trouser":
		return s.enterOrderNumberInput(ctx, in, CategoryTrouser, true)
	}

	state, ok, err := s.sessions.Get(ctx, in.From)
	if err != nil {
		s.log.WithContext(ctx).Error("session read failed", "error", err, "user", in.From)
		return Silence()
	}
	if !ok {
		return Silence()
	}

	switch state.Menu {
	case session.MenuMain:
		return s.handleMainOption(ctx, in, text)
	case session.MenuOrderQuery:
		return s.handleCategoryOption(ctx, in, text)
	case session.MenuOrderNumberInput:
		return s.runOrderFlow(ctx, in, state.Category, splitList(text))
	case session.MenuStockQuery:
		return s.runStockFlow(ctx, in, splitList(text))
	case session.MenuStoreSelection:
		return s.resolveStoreSelection(ctx, in, state, text)
	default:
		return Silence()
	}
}

func (s *Service) handleMainOption(ctx context.Context, in Inbound, text string) Outcome {
	switch text {
	case "1":
		s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})
		return ReplyText(ticketReply)
	case "2":
		s.setState(ctx, in.From, session.State{Menu: session.MenuOrderQuery})
		return ReplyText(orderQueryMenu)
	case "3":
		s.setState(ctx, in.From, session.State{Menu: session.MenuStockQuery})
		return ReplyText(stockPromptBody)
	case "4":
		s.setState(ctx, in.From, session.State{Menu: session.MenuCompleted})
		return ReplyText(comingSoonReply)
	default:
		return ReplyText(invalidOptionReply)
	}
}

func (s *Service) handleCategoryOption(ctx context.Context, in Inbound, text string) Outcome {
	switch strings.ToLower(text) {
	case "1", "/shirting":
		return s.enterOrderNumberInput(ctx, in, CategoryShirting, false)
	case "2", "/jacket":
		return s.enterOrderNumberInput(ctx, in, CategoryJacket, false)
	case "3", "/trouser":
		return s.enterOrderNumberInput(ctx, in, CategoryTrouser, false)
	default:
		return ReplyText(invalidOptionReply)
	}
}

func (s *Service) enterOrderNumberInput(ctx context.Context, in Inbound, category string, greeted bool) Outcome {
	s.setState(ctx, in.From, session.State{Menu: session.MenuOrderNumberInput, Category: category})

	prompt := categoryPrompt(category)
	if greeted {
		prompt = s.greetingFor(ctx, in.From) + "\n\n" + prompt
	}
	return ReplyText(prompt)
}

func (s *Service) setState(ctx context.Context, key string, state session.State) {
	if err := s.sessions.Set(ctx, key, state); err != nil {
		s.log.WithContext(ctx).Error("session write failed", "error", err, "user", key)
	}
}

// greetingFor builds the salutation line for a caller, falling back to a
// neutral greeting when the directory does not know them or is down.
func (s *Service) greetingFor(ctx context.Context, phoneNumber string) string {
	record, err := s.dir.FindGreeting(ctx, phoneNumber)
	if err != nil {
		s.log.WithContext(ctx).SourceError("directory", "greeting", err)
		return defaultGreeting
	}
	if record == nil {
		return defaultGreeting
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{record.Greeting, record.Salutation, record.Name} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	if len(parts) == 0 {
		return defaultGreeting
	}
	return strings.Join(parts, " ") + ","
}

// splitList parses comma-separated user input into trimmed, non-empty
// tokens, preserving order.
func splitList(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
