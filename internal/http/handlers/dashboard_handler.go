package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/services"
	"shelfkeeper/internal/validate"
)

type DashboardHandler struct {
	Workspace *services.WorkspaceService
}

// GET /api/v1/dashboard?horizon=week|month|future
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	hz, ok := validate.Horizon(c.Query("horizon"))
	if !ok {
		return badRequest(c, "horizon", "horizon must be week, month or future")
	}
	d, err := h.Workspace.Dashboard(c.UserContext(), userID(c), hz)
	if err != nil {
		return apiError(c, "dashboard.load.fail", err)
	}
	return c.JSON(d)
}

// GET /api/v1/reports
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	r, err := h.Workspace.Report(c.UserContext(), userID(c))
	if err != nil {
		return apiError(c, "report.load.fail", err)
	}
	return c.JSON(r)
}

// POST /api/v1/reload
func (h *DashboardHandler) Reload(c *fiber.Ctx) error {
	snap, err := h.Workspace.Load(c.UserContext(), userID(c))
	if err != nil {
		return apiError(c, "workspace.reload.fail", err)
	}
	applog.Info(c, "workspace.reload", map[string]any{"batches": len(snap.Batches), "products": len(snap.Products)})
	return c.JSON(fiber.Map{"batches": len(snap.Batches), "products": len(snap.Products), "loadedAt": snap.LoadedAt})
}
