package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shelfkeeper/internal/domain"
	"shelfkeeper/internal/expiry"
	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/repos"
	"shelfkeeper/internal/services"
	"shelfkeeper/internal/validate"
)

type ProfileHandler struct {
	Workspace *services.WorkspaceService
	Settings  *expiry.AlertSettings
}

// GET /api/v1/profile
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p, err := h.Workspace.Profile(c.UserContext(), userID(c))
	if err != nil {
		return apiError(c, "profile.load.fail", err)
	}
	return c.JSON(p)
}

// PUT /api/v1/profile
func (h *ProfileHandler) Put(c *fiber.Ctx) error {
	var p domain.StoreProfile
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "body", "invalid request body")
	}
	if _, ok := validate.Name(p.StoreName); !ok {
		return badRequest(c, "storeName", "store name is required")
	}
	if p.Email != "" {
		if _, ok := validate.Email(p.Email); !ok {
			return badRequest(c, "email", "invalid email")
		}
	}
	cur, ok := validate.Currency(p.Currency)
	if !ok {
		return badRequest(c, "currency", "currency must be a 3-letter code")
	}
	p.Currency = cur

	saved, err := h.Workspace.UpdateProfile(c.UserContext(), userID(c), p)
	if err != nil {
		// the new values stay in effect locally; say so
		if errors.Is(err, repos.ErrBackend) {
			applog.Error(c, "profile.save.fail", err, nil)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "Failed to save store profile.",
				"profile": saved,
			})
		}
		return apiError(c, "profile.save.fail", err)
	}
	applog.Audit(c, "profile.save", map[string]any{"store_name": saved.StoreName})
	return c.JSON(saved)
}

// GET /api/v1/settings/alerts
func (h *ProfileHandler) Alerts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"settings": h.Settings.All()})
}
