package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot-api/internal/service"
)

type BillingHandler struct {
	s service.SubscriptionService
}

func NewBillingHandler(service service.SubscriptionService) *BillingHandler {
	return &BillingHandler{s: service}
}

func (h *BillingHandler) CreateCheckout(c *fiber.Ctx) error {
	resp, err := h.s.CreateCheckout(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// StripeWebhook is mounted outside the authenticated group. The signature header is the only credential.
func (h *BillingHandler) StripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)

	if err := h.s.HandleWebhook(c.Context(), payload, c.Get("Stripe-Signature")); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
