// Package handler exposes the bot webhook over HTTP.
package handler

import (
	"context"
	"strings"

	"garment_whatsapp_backend/internal/bot/service"
	"garment_whatsapp_backend/internal/bot/transport"
	"garment_whatsapp_backend/platform/httpkit"
	"garment_whatsapp_backend/platform/logger"
	"garment_whatsapp_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates a new webhook handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// HandleWebhook processes an inbound WhatsApp message.
// POST /api/v1/webhook/whatsapp
// The endpoint acknowledges every payload with 200: the platform retries
// on failure and a retried conversation turn is worse than a dropped one.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var payload transport.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.OK(c, gin.H{"status": "ignored"})
		return
	}

	if err := h.val.Struct(payload); err != nil {
		h.log.WithContext(c.Request.Context()).Debug("webhook payload rejected", "error", err)
		httpkit.OK(c, gin.H{"status": "ignored"})
		return
	}

	text := strings.TrimSpace(payload.Message.Text)
	from := strings.TrimSpace(payload.User.Phone)
	if text == "" || from == "" {
		httpkit.OK(c, gin.H{"status": "ignored"})
		return
	}

	ctx := context.WithValue(c.Request.Context(), logger.UserPhoneKey, from)

	out := h.svc.Respond(ctx, service.Inbound{
		From:      from,
		Text:      text,
		ProductID: payload.ProductIDValue(),
		PhoneID:   payload.PhoneIDValue(),
	})

	httpkit.OK(c, gin.H{"status": "ok", "silent": out.Silent})
}
