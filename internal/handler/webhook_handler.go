package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/service"
)

// WebhookHandler handles external payment webhooks
type WebhookHandler struct {
	billing *service.BillingService
}

func NewWebhookHandler(billing *service.BillingService) *WebhookHandler {
	return &WebhookHandler{billing: billing}
}

// IPaymuWebhook handles POST /v1/billing/webhook/ipaymu.
// Public endpoint; the payload signature is the authentication.
func (h *WebhookHandler) IPaymuWebhook(c *fiber.Ctx) error {
	var cb service.PaymentCallback
	if err := c.BodyParser(&cb); err != nil {
		log.Printf("[Webhook] Failed to parse body: %v", err)
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	log.Printf("[Webhook] Received callback: sid=%s, status=%s, va=%s, amount=%d",
		cb.SID, cb.Status, cb.VA, cb.Amount)

	result, err := h.billing.HandleCallback(c.UserContext(), cb)
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		log.Printf("[Webhook] Signature verification failed for sid=%s", cb.SID)
		return fail(c, fiber.StatusUnauthorized, "invalid signature")
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "invoice not found")
	case err != nil:
		return respondError(c, "Webhook", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": string(result),
	})
}
