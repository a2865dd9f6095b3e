package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"garment_whatsapp_backend/internal/bot/service"
	"garment_whatsapp_backend/internal/bot/session"
	"garment_whatsapp_backend/internal/directory"
	"garment_whatsapp_backend/internal/orders"
	"garment_whatsapp_backend/platform/logger"
	"garment_whatsapp_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type stubDirectory struct{}

func (stubDirectory) FindGreeting(context.Context, string) (*directory.Greeting, error) {
	return nil, nil
}
func (stubDirectory) FindPermittedStores(context.Context, string) ([]string, error) {
	return nil, nil
}

type stubOrderLookup struct{}

func (stubOrderLookup) FindOrderStatus(context.Context, string, string) (orders.Status, error) {
	return orders.Status{Found: false, Message: orders.NotFoundMessage}, nil
}

type stubStockLookup struct{}

func (stubStockLookup) FindStock(context.Context, []string) (map[string]map[string]string, error) {
	return nil, nil
}

type recordingMessenger struct {
	bodies []string
	phones []string
}

func (m *recordingMessenger) SendText(ctx context.Context, _, _, _, body string) error {
	m.bodies = append(m.bodies, body)
	if phone, ok := ctx.Value(logger.UserPhoneKey).(string); ok {
		m.phones = append(m.phones, phone)
	}
	return nil
}

type stubFormConfig struct{}

func (stubFormConfig) GetOrderFormURL() string     { return "https://example.test/form" }
func (stubFormConfig) GetFormStoreField() string   { return "entry.1" }
func (stubFormConfig) GetFormPhoneField() string   { return "entry.2" }
func (stubFormConfig) GetFormQualityField() string { return "entry.3" }
func (stubFormConfig) GetContactAddress() string   { return "" }

func setupRouter(t *testing.T) (*gin.Engine, *recordingMessenger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("test")
	messenger := &recordingMessenger{}
	svc := service.New(
		session.NewMemoryStore(time.Hour),
		stubDirectory{},
		stubOrderLookup{},
		stubStockLookup{},
		messenger,
		stubFormConfig{},
		log,
	)

	router := gin.New()
	router.POST("/webhook/whatsapp", New(svc, validator.New(), log).HandleWebhook)
	return router, messenger
}

func postWebhook(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleWebhookValidMessage(t *testing.T) {
	router, messenger := setupRouter(t)

	rec := postWebhook(t, router, `{
		"message": {"text": "/menu"},
		"user": {"phone": "+911234567890"},
		"product_id": "prod-1",
		"phone_id": "phone-1"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeStatus(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["silent"] != false {
		t.Errorf("silent field = %v, want false", body["silent"])
	}
	if len(messenger.bodies) != 1 {
		t.Errorf("sent %d messages, want 1", len(messenger.bodies))
	}
}

func TestHandleWebhookCarriesUserPhoneInContext(t *testing.T) {
	router, messenger := setupRouter(t)

	postWebhook(t, router, `{
		"message": {"text": "/menu"},
		"user": {"phone": "+911234567890"}
	}`)

	if len(messenger.phones) != 1 || messenger.phones[0] != "+911234567890" {
		t.Errorf("user phone not carried through context: %v", messenger.phones)
	}
}

func TestHandleWebhookCamelCaseIdentifiers(t *testing.T) {
	router, messenger := setupRouter(t)

	rec := postWebhook(t, router, `{
		"message": {"text": "/menu"},
		"user": {"phone": "+911234567890"},
		"productId": "prod-1",
		"phoneId": "phone-1"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(messenger.bodies) != 1 {
		t.Errorf("sent %d messages, want 1", len(messenger.bodies))
	}
}

func TestHandleWebhookSilentForUnknownText(t *testing.T) {
	router, messenger := setupRouter(t)

	rec := postWebhook(t, router, `{
		"message": {"text": "hello"},
		"user": {"phone": "+911234567890"}
	}`)

	body := decodeStatus(t, rec)
	if body["status"] != "ok" || body["silent"] != true {
		t.Errorf("unexpected body: %v", body)
	}
	if len(messenger.bodies) != 0 {
		t.Errorf("nothing should be sent, got %v", messenger.bodies)
	}
}

func TestHandleWebhookIgnoresMalformedPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"empty object", `{}`},
		{"missing phone", `{"message": {"text": "/menu"}}`},
		{"blank text", `{"message": {"text": "   "}, "user": {"phone": "+911234567890"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, messenger := setupRouter(t)

			rec := postWebhook(t, router, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := decodeStatus(t, rec)
			if body["status"] != "ignored" {
				t.Errorf("status field = %v, want ignored", body["status"])
			}
			if len(messenger.bodies) != 0 {
				t.Errorf("nothing should be sent, got %v", messenger.bodies)
			}
		})
	}
}

func TestHandleWebhookRejectsOversizedText(t *testing.T) {
	router, messenger := setupRouter(t)

	huge, _ := json.Marshal(strings.Repeat("a", 5000))
	rec := postWebhook(t, router, `{
		"message": {"text": `+string(huge)+`},
		"user": {"phone": "+911234567890"}
	}`)

	body := decodeStatus(t, rec)
	if body["status"] != "ignored" {
		t.Errorf("status field = %v, want ignored", body["status"])
	}
	if len(messenger.bodies) != 0 {
		t.Errorf("nothing should be sent, got %v", messenger.bodies)
	}
}
