package handlers

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shelfkeeper/internal/advisory"
	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/services"
	"shelfkeeper/internal/validate"
)

type AdvisoryHandler struct {
	Advisory *services.AdvisoryService
}

type labelRequest struct {
	ImageData string `json:"imageData"` // base64, optionally a data: URL
	MimeType  string `json:"mimeType"`
}

// decodeImage accepts raw base64 or a data URL.
func decodeImage(s string) ([]byte, string, error) {
	mime := ""
	if strings.HasPrefix(s, "data:") {
		head, body, ok := strings.Cut(s, ",")
		if !ok {
			return nil, "", errors.New("malformed data url")
		}
		mime = strings.TrimSuffix(strings.TrimPrefix(head, "data:"), ";base64")
		s = body
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	return b, mime, err
}

// POST /api/v1/advisory/label
func (h *AdvisoryHandler) Label(c *fiber.Ctx) error {
	var req labelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	if req.ImageData == "" {
		return badRequest(c, "imageData", "image data required")
	}
	img, mime, err := decodeImage(req.ImageData)
	if err != nil || len(img) == 0 {
		return badRequest(c, "imageData", "image data must be base64")
	}
	if req.MimeType != "" {
		mime = req.MimeType
	}
	fields, err := h.Advisory.AnalyzeLabel(c.UserContext(), img, mime)
	if err != nil {
		if errors.Is(err, advisory.ErrNotConfigured) || errors.Is(err, advisory.ErrInvalidInput) {
			return apiError(c, "advisory.label.fail", err)
		}
		applog.Error(c, "advisory.label.fail", err, map[string]any{"bytes": len(img)})
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to analyze image"})
	}
	applog.Info(c, "advisory.label", map[string]any{"barcode": fields.Barcode})
	return c.JSON(fields)
}

type bundleRequest struct {
	Items []string `json:"items"`
}

// POST /api/v1/advisory/bundle
func (h *AdvisoryHandler) Bundle(c *fiber.Ctx) error {
	var req bundleRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "body", "invalid request body")
		}
	}
	var items []string
	for _, it := range req.Items {
		name, ok := validate.Name(it)
		if !ok {
			return badRequest(c, "items", "item names must be 1-80 characters")
		}
		items = append(items, name)
	}
	out, err := h.Advisory.SuggestBundle(c.UserContext(), userID(c), items)
	if err != nil {
		if errors.Is(err, advisory.ErrInvalidInput) {
			return badRequest(c, "items", "no items to bundle")
		}
		return apiError(c, "advisory.bundle.fail", err)
	}
	return c.JSON(out)
}

type priceRequest struct {
	BatchID string `json:"batchId"`
}

// POST /api/v1/advisory/price
func (h *AdvisoryHandler) Price(c *fiber.Ctx) error {
	var req priceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	id, ok := validate.ID(req.BatchID)
	if !ok {
		return badRequest(c, "batchId", "invalid batch id")
	}
	out, err := h.Advisory.SuggestPrice(c.UserContext(), userID(c), id)
	if err != nil {
		return apiError(c, "advisory.price.fail", err)
	}
	return c.JSON(out)
}
