package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot-api/internal/service"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type ContentHandler struct {
	s service.ContentService
}

func NewContentHandler(service service.ContentService) *ContentHandler {
	return &ContentHandler{s: service}
}

func (h *ContentHandler) AnalyzeMenuImage(c *fiber.Ctx) error {
	req := new(transfer.AnalyzeMenuImageRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}
	return h.respond(c, func() (map[string]any, error) {
		return h.s.AnalyzeMenuImage(c.Context(), GetUserID(c), req)
	})
}

func (h *ContentHandler) AnalyzeWebsite(c *fiber.Ctx) error {
	req := new(transfer.AnalyzeWebsiteRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}
	return h.respond(c, func() (map[string]any, error) {
		return h.s.AnalyzeWebsite(c.Context(), GetUserID(c), req)
	})
}

func (h *ContentHandler) GenerateStoryContent(c *fiber.Ctx) error {
	req := new(transfer.StoryContentRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}
	return h.respond(c, func() (map[string]any, error) {
		return h.s.StoryContent(c.Context(), GetUserID(c), req)
	})
}

func (h *ContentHandler) GenerateBrandHashtag(c *fiber.Ctx) error {
	req := new(transfer.BrandHashtagRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}
	return h.respond(c, func() (map[string]any, error) {
		return h.s.BrandHashtags(c.Context(), GetUserID(c), req)
	})
}

func (h *ContentHandler) respond(c *fiber.Ctx, call func() (map[string]any, error)) error {
	out, err := call()
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(out)
}
