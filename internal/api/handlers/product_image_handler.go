package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot-api/internal/apperrors"
	"github.com/postpilot/postpilot-api/internal/service"
	"github.com/postpilot/postpilot-api/internal/transfer"
)

type ProductImageHandler struct {
	s service.ProductImageService
}

func NewProductImageHandler(service service.ProductImageService) *ProductImageHandler {
	return &ProductImageHandler{s: service}
}

func (h *ProductImageHandler) ListProductImages(c *fiber.Ctx) error {
	images, err := h.s.List(c.Context(), GetUserID(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"images": images})
}

func (h *ProductImageHandler) UploadProductImage(c *fiber.Ctx) error {
	meta := new(transfer.UploadProductImage)
	if err := parseBody(c, meta); err != nil {
		return fail(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fail(c, apperrors.Required("file"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fail(c, err)
	}

	img, err := h.s.Upload(c.Context(), GetUserID(c), meta, data)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(img)
}

func (h *ProductImageHandler) SetFeatured(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.s.SetFeatured(c.Context(), GetUserID(c), id); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *ProductImageHandler) Reorder(c *fiber.Ctx) error {
	req := new(transfer.ReorderProductImagesRequest)
	if err := parseBody(c, req); err != nil {
		return fail(c, err)
	}

	if err := h.s.Reorder(c.Context(), GetUserID(c), req.IDs); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *ProductImageHandler) DeleteProductImage(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.s.Delete(c.Context(), GetUserID(c), id); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
