package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"garment_whatsapp_backend/internal/bot/session"
	"garment_whatsapp_backend/internal/directory"
	"garment_whatsapp_backend/internal/orders"
	"garment_whatsapp_backend/platform/logger"
)

type fakeDirectory struct {
	greeting    *directory.Greeting
	greetingErr error
	stores      []string
	storesErr   error
}

func (f *fakeDirectory) FindGreeting(_ context.Context, _ string) (*directory.Greeting, error) {
	return f.greeting, f.greetingErr
}

func (f *fakeDirectory) FindPermittedStores(_ context.Context, _ string) ([]string, error) {
	return f.stores, f.storesErr
}

type fakeOrderLookup struct {
	statuses map[string]orders.Status
	err      error
}

func (f *fakeOrderLookup) FindOrderStatus(_ context.Context, orderNumber, _ string) (orders.Status, error) {
	if f.err != nil {
		return orders.Status{}, f.err
	}
	if status, ok := f.statuses[orderNumber]; ok {
		return status, nil
	}
	return orders.Status{Found: false, Message: orders.NotFoundMessage}, nil
}

type fakeStockLookup struct {
	result map[string]map[string]string
	err    error
}

func (f *fakeStockLookup) FindStock(_ context.Context, _ []string) (map[string]map[string]string, error) {
	return f.result, f.err
}

type sentMessage struct {
	to   string
	body string
}

type fakeMessenger struct {
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) SendText(_ context.Context, _, _, to, body string) error {
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return f.err
}

type fakeFormConfig struct{ contact string }

func (f *fakeFormConfig) GetOrderFormURL() string {
	return "https://docs.google.com/forms/d/e/abc/viewform"
}
func (f *fakeFormConfig) GetFormStoreField() string   { return "entry.1277095329" }
func (f *fakeFormConfig) GetFormPhoneField() string   { return "entry.1644261192" }
func (f *fakeFormConfig) GetFormQualityField() string { return "entry.1671989732" }
func (f *fakeFormConfig) GetContactAddress() string   { return f.contact }

type serviceFixture struct {
	svc       *Service
	sessions  *session.MemoryStore
	dir       *fakeDirectory
	orders    *fakeOrderLookup
	stock     *fakeStockLookup
	messenger *fakeMessenger
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		sessions:  session.NewMemoryStore(time.Hour),
		dir:       &fakeDirectory{},
		orders:    &fakeOrderLookup{},
		stock:     &fakeStockLookup{},
		messenger: &fakeMessenger{},
	}
	f.svc = New(f.sessions, f.dir, f.orders, f.stock, f.messenger, &fakeFormConfig{}, logger.New("test"))
	return f
}

func (f *serviceFixture) state(t *testing.T, key string) session.State {
	t.Helper()
	state, ok, err := f.sessions.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("no session state for %q: ok=%v err=%v", key, ok, err)
	}
	return state
}

const testUser = "+911234567890"

func inbound(text string) Inbound {
	return Inbound{From: testUser, Text: text, ProductID: "prod-1", PhoneID: "phone-1"}
}

func TestMenuCommandOpensMainMenu(t *testing.T) {
	f := newFixture(t)

	out := f.svc.HandleMessage(context.Background(), inbound("/menu"))
	if out.Silent {
		t.Fatal("expected a reply")
	}
	if !strings.HasPrefix(out.Reply, defaultGreeting) {
		t.Errorf("reply should open with the default greeting, got %q", out.Reply)
	}
	if !strings.Contains(out.Reply, "1. Raise a ticket") {
		t.Errorf("reply missing menu options: %q", out.Reply)
	}
	if got := f.state(t, testUser).Menu; got != session.MenuMain {
		t.Errorf("menu = %q, want %q", got, session.MenuMain)
	}
}

func TestMenuCommandUsesDirectoryGreeting(t *testing.T) {
	f := newFixture(t)
	f.dir.greeting = &directory.Greeting{Name: "Sharma", Salutation: "Mr.", Greeting: "Namaste"}

	out := f.svc.HandleMessage(context.Background(), inbound("/menu"))
	if !strings.HasPrefix(out.Reply, "Namaste Mr. Sharma,") {
		t.Errorf("reply = %q, want directory greeting prefix", out.Reply)
	}
}

func TestGreetingFallsBackWhenDirectoryFails(t *testing.T) {
	f := newFixture(t)
	f.dir.greetingErr = errors.New("sheet unavailable")

	out := f.svc.HandleMessage(context.Background(), inbound("/menu"))
	if !strings.HasPrefix(out.Reply, defaultGreeting) {
		t.Errorf("reply = %q, want fallback greeting", out.Reply)
	}
}

func TestUnknownTextWithoutStateIsSilent(t *testing.T) {
	f := newFixture(t)

	out := f.svc.HandleMessage(context.Background(), inbound("hello there"))
	if !out.Silent {
		t.Errorf("expected silence, got reply %q", out.Reply)
	}
	if len(f.messenger.sent) != 0 {
		t.Errorf("nothing should have been sent, got %d messages", len(f.messenger.sent))
	}
}

func TestEmptyTextIsSilent(t *testing.T) {
	f := newFixture(t)

	if out := f.svc.HandleMessage(context.Background(), inbound("   ")); !out.Silent {
		t.Errorf("expected silence, got reply %q", out.Reply)
	}
}

func TestMainMenuOptions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
		wantMenu session.Menu
	}{
		{"ticket", "1", "raise a ticket", session.MenuCompleted},
		{"order status", "2", "Which category", session.MenuOrderQuery},
		{"stock", "3", "quality names", session.MenuStockQuery},
		{"place order", "4", "coming soon", session.MenuCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.svc.HandleMessage(ctx, inbound("/menu"))

			out := f.svc.HandleMessage(ctx, inbound(tt.input))
			if !strings.Contains(strings.ToLower(out.Reply), strings.ToLower(tt.contains)) {
				t.Errorf("reply = %q, want it to mention %q", out.Reply, tt.contains)
			}
			if got := f.state(t, testUser).Menu; got != tt.wantMenu {
				t.Errorf("menu = %q, want %q", got, tt.wantMenu)
			}
		})
	}
}

func TestMainMenuInvalidOptionRepeatsPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.HandleMessage(ctx, inbound("/menu"))

	out := f.svc.HandleMessage(ctx, inbound("9"))
	if out.Reply != invalidOptionReply {
		t.Errorf("reply = %q, want %q", out.Reply, invalidOptionReply)
	}
	if got := f.state(t, testUser).Menu; got != session.MenuMain {
		t.Errorf("invalid option must not move the menu, got %q", got)
	}
}

func TestCategorySelectionStoresCategory(t *testing.T) {
	tests := []struct {
		input    string
		category string
	}{
		{"1", CategoryShirting},
		{"2", CategoryJacket},
		{"3", CategoryTrouser},
		{"/jacket", CategoryJacket},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.svc.HandleMessage(ctx, inbound("/menu"))
			f.svc.HandleMessage(ctx, inbound("2"))

			out := f.svc.HandleMessage(ctx, inbound(tt.input))
			if !strings.Contains(out.Reply, tt.category) {
				t.Errorf("prompt %q should name category %s", out.Reply, tt.category)
			}

			state := f.state(t, testUser)
			if state.Menu != session.MenuOrderNumberInput {
				t.Errorf("menu = %q, want %q", state.Menu, session.MenuOrderNumberInput)
			}
			if state.Category != tt.category {
				t.Errorf("category = %q, want %q", state.Category, tt.category)
			}
		})
	}
}

func TestCategoryShortcutSkipsMenus(t *testing.T) {
	f := newFixture(t)

	out := f.svc.HandleMessage(context.Background(), inbound("/shirting"))
	if !strings.HasPrefix(out.Reply, defaultGreeting) {
		t.Errorf("shortcut entry should greet, got %q", out.Reply)
	}

	state := f.state(t, testUser)
	if state.Menu != session.MenuOrderNumberInput || state.Category != CategoryShirting {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestMenuCommandResetsFromInputStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Park the user in order-number input, then reset.
	f.svc.HandleMessage(ctx, inbound("/trouser"))

	out := f.svc.HandleMessage(ctx, inbound("/menu"))
	if !strings.Contains(out.Reply, "1. Raise a ticket") {
		t.Errorf("reset should show the main menu, got %q", out.Reply)
	}
	if got := f.state(t, testUser).Menu; got != session.MenuMain {
		t.Errorf("menu = %q, want %q", got, session.MenuMain)
	}
}

func TestSlashAloneOpensMainMenu(t *testing.T) {
	f := newFixture(t)

	out := f.svc.HandleMessage(context.Background(), inbound("/"))
	if !strings.Contains(out.Reply, "1. Raise a ticket") {
		t.Errorf("reply = %q, want main menu", out.Reply)
	}
}

func TestRespondDeliversReply(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Respond(context.Background(), inbound("/menu"))
	if out.Silent {
		t.Fatal("expected a reply")
	}
	if len(f.messenger.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(f.messenger.sent))
	}
	if f.messenger.sent[0].to != testUser || f.messenger.sent[0].body != out.Reply {
		t.Errorf("unexpected delivery: %+v", f.messenger.sent[0])
	}
}

func TestRespondSkipsDeliveryWhenSilent(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Respond(context.Background(), inbound("random text"))
	if !out.Silent {
		t.Fatalf("expected silence, got %q", out.Reply)
	}
	if len(f.messenger.sent) != 0 {
		t.Errorf("silent outcome must not send, got %d messages", len(f.messenger.sent))
	}
}

func TestRespondSurvivesDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.messenger.err = errors.New("gateway timeout")

	out := f.svc.Respond(context.Background(), inbound("/menu"))
	if out.Silent || out.Reply == "" {
		t.Errorf("outcome should be unaffected by delivery failure: %+v", out)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" LTS8156 , , ETCH8029,")
	if len(got) != 2 || got[0] != "LTS8156" || got[1] != "ETCH8029" {
		t.Errorf("splitList = %v", got)
	}
}
