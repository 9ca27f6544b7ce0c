package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shelfkeeper/internal/expiry"
	"shelfkeeper/internal/services"
	"shelfkeeper/internal/validate"
)

type InventoryHandler struct {
	Workspace *services.WorkspaceService
}

// parseViewQuery reads filter, category and q. field names the first bad one.
func parseViewQuery(c *fiber.Ctx) (q expiry.ViewQuery, field string, ok bool) {
	f, ok := validate.Filter(c.Query("filter"))
	if !ok {
		return q, "filter", false
	}
	cat, ok := validate.Category(c.Query("category"))
	if !ok {
		return q, "category", false
	}
	search, ok := validate.Q(c.Query("q"))
	if !ok {
		return q, "q", false
	}
	return expiry.ViewQuery{Urgency: f, Category: cat, Search: search}, "", true
}

// GET /api/v1/inventory?filter=&category=&q=
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	q, field, ok := parseViewQuery(c)
	if !ok {
		return badRequest(c, field, "invalid "+field)
	}
	rows, err := h.Workspace.Inventory(c.UserContext(), userID(c), q)
	if err != nil {
		return apiError(c, "inventory.load.fail", err)
	}
	return c.JSON(fiber.Map{"items": rows, "count": len(rows)})
}
