// Package bot provides the conversation bounded context module.
package bot

import (
	"garment_whatsapp_backend/internal/bot/handler"
	"garment_whatsapp_backend/internal/bot/service"
	"garment_whatsapp_backend/internal/bot/session"
	"garment_whatsapp_backend/platform/config"
	"garment_whatsapp_backend/platform/logger"
	"garment_whatsapp_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module wires the conversation state machine behind the webhook route.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the bot module.
func NewModule(
	sessions session.Store,
	dir service.Directory,
	orderLookup service.OrderLookup,
	stockLookup service.StockLookup,
	messenger service.Messenger,
	form config.FormConfig,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.New(sessions, dir, orderLookup, stockLookup, messenger, form, log)
	h := handler.New(svc, val, log)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "bot"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the webhook route on the provided group.
func (m *Module) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/webhook/whatsapp", m.handler.HandleWebhook)
}
