package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot-api/internal/service"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type CalendarHandler struct {
	s service.CalendarService
}

func NewCalendarHandler(service service.CalendarService) *CalendarHandler {
	return &CalendarHandler{s: service}
}

func (h *CalendarHandler) GenerateCalendar(c *fiber.Ctx) error {
	req := new(transfer.GenerateCalendarRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}
	// The caller's token decides whose calendar this is.
	req.UserID = GetUserID(c)

	items, err := h.s.Generate(c.Context(), req.UserID, req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(transfer.GenerateCalendarResponse{Items: items})
}

func (h *CalendarHandler) RegenerateDay(c *fiber.Ctx) error {
	req := new(transfer.RegenerateDayRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}

	item, err := h.s.RegenerateDay(c.Context(), GetUserID(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(item)
}

func (h *CalendarHandler) CreateCalendar(c *fiber.Ctx) error {
	req := new(transfer.CreateCalendarRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}

	cal, err := h.s.Create(c.Context(), GetUserID(c), req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(cal)
}

func (h *CalendarHandler) ListCalendars(c *fiber.Ctx) error {
	calendars, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"calendars": calendars})
}

func (h *CalendarHandler) GetCalendar(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, err)
	}

	cal, err := h.s.Get(c.Context(), GetUserID(c), id)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(cal)
}

func (h *CalendarHandler) DeleteCalendar(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.s.Delete(c.Context(), GetUserID(c), id); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
