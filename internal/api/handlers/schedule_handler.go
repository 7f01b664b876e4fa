package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot-api/internal/service"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type ScheduleHandler struct {
	s service.ScheduleService
}

func NewScheduleHandler(service service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{s: service}
}

func (h *ScheduleHandler) SchedulePost(c *fiber.Ctx) error {
	req := new(transfer.SchedulePostRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}

	resp, err := h.s.Schedule(c.Context(), GetUserID(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *ScheduleHandler) ListScheduledPosts(c *fiber.Ctx) error {
	posts, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"scheduledPosts": posts})
}

func (h *ScheduleHandler) CancelScheduledPost(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.s.Cancel(c.Context(), GetUserID(c), id); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
