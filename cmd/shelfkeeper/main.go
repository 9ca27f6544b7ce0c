package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"

	"shelfkeeper/internal/advisory"
	"shelfkeeper/internal/config"
	"shelfkeeper/internal/expiry"
	"shelfkeeper/internal/http/handlers"
	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/repos"
	"shelfkeeper/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.Fatal("config.invalid", err, nil)
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Error(nil, "log.file.open", err, map[string]any{"path": cfg.LogFile})
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Init(cfg.LogLevel, !cfg.IsProduction() && cfg.LogFile == "", out)
	applog.Info(nil, "app.start", cfg.Fields())

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	settings, err := expiry.NewAlertSettings(expiry.DefaultAlertSettings())
	if err != nil {
		applog.Fatal("settings.invalid", err, nil)
	}

	store, err := repos.NewGateway(repos.Options{
		Backend: cfg.Backend,
		Driver:  cfg.DBDriver,
		DSN:     cfg.DBDSN,
		Latency: cfg.SimulatedLatency,
	})
	if err != nil {
		applog.Fatal("store.open", err, map[string]any{"backend": cfg.Backend})
	}
	defer store.Close()

	advisor, err := advisory.NewGemini(context.Background(), advisory.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.AdvisoryTimeout,
	})
	if err != nil {
		applog.Fatal("advisory.init", err, nil)
	}
	if !advisor.Configured() {
		applog.Info(nil, "advisory.disabled", map[string]any{"reason": "GEMINI_API_KEY not set"})
	}

	authSvc := &services.AuthService{Users: store.Users, Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	ws := services.NewWorkspaceService(store.Gateway, settings)
	advSvc := &services.AdvisoryService{Advisor: advisor, Workspace: ws}
	deps := handlers.NewDeps(authSvc, ws, advSvc)
	deps.AuthHandler.SecureCookie = cfg.IsProduction()

	engine := handlers.NewViews(cfg.TemplatesDir)
	engine.Reload(!cfg.IsProduction())

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    8 << 20, // label photos arrive base64 encoded
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.IsProduction(),
		// bearer-token API calls carry no ambient credentials
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	app.Static("/static", "./web/static")
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "backend": cfg.Backend, "advisory": advisor.Configured()})
	})

	handlers.Mount(app, deps, handlers.Limits{})

	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.Fatal("server.listen", err, map[string]any{"port": cfg.Port})
	}
}
