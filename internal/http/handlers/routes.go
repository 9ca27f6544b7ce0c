package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "shelfkeeper/internal/log"
)

// Limits sets the per-route throttles. Zero values take the defaults.
type Limits struct {
	LoginMax       int
	LoginWindow    time.Duration
	AdvisoryMax    int
	AdvisoryWindow time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.LoginMax == 0 {
		l.LoginMax = 5
	}
	if l.LoginWindow == 0 {
		l.LoginWindow = 10 * time.Minute
	}
	if l.AdvisoryMax == 0 {
		l.AdvisoryMax = 10
	}
	if l.AdvisoryWindow == 0 {
		l.AdvisoryWindow = time.Minute
	}
	return l
}

// Mount registers every page and API route on app.
func Mount(app *fiber.App, d *Deps, lim Limits) {
	lim = lim.withDefaults()
	auth := d.AuthHandler.Auth

	loginLimiter := limiter.New(limiter.Config{
		Max:        lim.LoginMax,
		Expiration: lim.LoginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			if isAPI(c) {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many attempts, try again later"})
			}
			c.Status(fiber.StatusTooManyRequests)
			return render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	})
	advisoryLimiter := limiter.New(limiter.Config{
		Max:        lim.AdvisoryMax,
		Expiration: lim.AdvisoryWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|advisory"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.advisory.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})

	// Pages
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", loginLimiter, d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	user := RequireUser(auth)
	app.Get("/", user, d.PageHandler.Dashboard)
	app.Get("/inventory", user, d.PageHandler.Inventory)
	app.Post("/inventory/:id/status", user, d.PageHandler.SetStatus)
	app.Get("/reports", user, d.PageHandler.Reports)

	// API; login is registered ahead of the guarded group
	app.Post("/api/v1/auth/login", loginLimiter, d.AuthHandler.APILogin)

	api := app.Group("/api/v1", RequireAPIUser(auth))
	api.Get("/dashboard", d.DashboardHandler.Get)
	api.Get("/inventory", d.InventoryHandler.List)
	api.Get("/reports", d.DashboardHandler.Report)
	api.Post("/reload", d.DashboardHandler.Reload)
	api.Get("/products/:barcode", d.IntakeHandler.Lookup)
	api.Post("/batches", d.IntakeHandler.AddBatch)
	api.Patch("/batches/:id/status", d.IntakeHandler.UpdateStatus)
	api.Get("/profile", d.ProfileHandler.Get)
	api.Put("/profile", d.ProfileHandler.Put)
	api.Get("/settings/alerts", d.ProfileHandler.Alerts)

	adv := api.Group("/advisory", advisoryLimiter)
	adv.Post("/label", d.AdvisoryHandler.Label)
	adv.Post("/bundle", d.AdvisoryHandler.Bundle)
	adv.Post("/price", d.AdvisoryHandler.Price)
}
