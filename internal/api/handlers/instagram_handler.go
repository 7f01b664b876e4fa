package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot-api/internal/service"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type InstagramHandler struct {
	instagram service.InstagramService
	analytics service.AnalyticsService
}

func NewInstagramHandler(instagram service.InstagramService, analytics service.AnalyticsService) *InstagramHandler {
	return &InstagramHandler{instagram: instagram, analytics: analytics}
}

func (h *InstagramHandler) PostToInstagram(c *fiber.Ctx) error {
	req := new(transfer.PostToInstagramRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}

	resp, err := h.instagram.Publish(c.Context(), GetUserID(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *InstagramHandler) ConnectInstagram(c *fiber.Ctx) error {
	req := new(transfer.ConnectInstagramRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}

	if req.CheckConfig {
		return c.Status(fiber.StatusOK).JSON(h.instagram.CheckConfig())
	}

	resp, err := h.instagram.Connect(c.Context(), GetUserID(c), req.Code, req.RedirectURI)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *InstagramHandler) DisconnectInstagram(c *fiber.Ctx) error {
	if err := h.instagram.Disconnect(c.Context(), GetUserID(c)); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Instagram disconnected",
	})
}

func (h *InstagramHandler) FetchAnalytics(c *fiber.Ctx) error {
	resp, err := h.analytics.Sync(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *InstagramHandler) AnalyzeHashtagPerformance(c *fiber.Ctx) error {
	resp, err := h.analytics.HashtagPerformance(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
