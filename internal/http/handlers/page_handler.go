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

// PageHandler serves the server-rendered screens.
type PageHandler struct {
	Workspace *services.WorkspaceService
}

func (h *PageHandler) failPage(c *fiber.Ctx, action string, err error) error {
	status, msg := statusFor(err)
	if errors.Is(err, repos.ErrUnauthenticated) {
		return c.Redirect("/login")
	}
	applog.Error(c, action, err, nil)
	return c.Status(status).Render("notfound", fiber.Map{"Message": msg})
}

// GET /
func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	hz, ok := validate.Horizon(c.Query("horizon"))
	if !ok {
		hz = expiry.HorizonWeek
	}
	d, err := h.Workspace.Dashboard(c.UserContext(), userID(c), hz)
	if err != nil {
		return h.failPage(c, "page.dashboard.fail", err)
	}
	return render(c, "dashboard", fiber.Map{
		"D":        d,
		"Horizons": []expiry.Horizon{expiry.HorizonWeek, expiry.HorizonMonth, expiry.HorizonFuture},
	})
}

// GET /inventory
func (h *PageHandler) Inventory(c *fiber.Ctx) error {
	q, field, ok := parseViewQuery(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": field})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Invalid filter"})
	}
	rows, err := h.Workspace.Inventory(c.UserContext(), userID(c), q)
	if err != nil {
		return h.failPage(c, "page.inventory.fail", err)
	}
	cat := string(q.Category)
	if cat == "" {
		cat = expiry.CategoryAll
	}
	return render(c, "inventory", fiber.Map{
		"Rows":       rows,
		"Filter":     string(q.Urgency),
		"Category":   cat,
		"Q":          q.Search,
		"Categories": domain.Categories,
		"Filters":    []expiry.UrgencyFilter{expiry.FilterAll, expiry.FilterCritical, expiry.FilterWarning, expiry.FilterSafe, expiry.FilterExpired},
	})
}

// POST /inventory/:id/status
func (h *PageHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "id"})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Invalid batch"})
	}
	st, ok := validate.Status(c.FormValue("status"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "status"})
		return c.Status(fiber.StatusBadRequest).Render("notfound", fiber.Map{"Message": "Invalid status"})
	}
	if _, err := setStatus(c, h.Workspace, id, st); err != nil {
		return h.failPage(c, "page.status.fail", err)
	}
	return c.Redirect("/inventory")
}

// GET /reports
func (h *PageHandler) Reports(c *fiber.Ctx) error {
	r, err := h.Workspace.Report(c.UserContext(), userID(c))
	if err != nil {
		return h.failPage(c, "page.reports.fail", err)
	}
	p, err := h.Workspace.Profile(c.UserContext(), userID(c))
	if err != nil {
		return h.failPage(c, "page.reports.fail", err)
	}
	return render(c, "reports", fiber.Map{"R": r, "Currency": p.Currency})
}
