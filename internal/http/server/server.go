package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenancypack/internal/config"
	"tenancypack/internal/document"
	"tenancypack/internal/domain"
	"tenancypack/internal/http/handlers"
	"tenancypack/internal/http/middleware"
	"tenancypack/internal/infra/chrome"
	"tenancypack/internal/infra/logging"
	"tenancypack/internal/infra/ratelimit"
	"tenancypack/internal/infra/redisprobe"
)

// Deps are the collaborators of the HTTP server. Nil fields are built from
// Config.
type Deps struct {
	Config   config.Config
	Renderer document.Renderer
	Store    fiber.Storage
	Probe    *redisprobe.Probe
	Now      func() time.Time
}

// New creates the Fiber app with middleware, routes and a JSON 404.
func New(d Deps) *fiber.App {
	cfg := d.Config
	if d.Renderer == nil {
		d.Renderer = NewRenderer(cfg)
	}
	if d.Store == nil {
		d.Store = ratelimit.NewStore(cfg.Redis)
	}
	if d.Probe == nil {
		d.Probe = redisprobe.New(cfg.Redis)
	}

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	middleware.Register(app, cfg, d.Probe)
	registerRoutes(app, cfg, d)

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

func registerRoutes(app *fiber.App, cfg config.Config, d Deps) {
	svc := handlers.NewPackService(cfg, d.Renderer, d.Now)

	app.Post("/generate-tenancy-pack", middleware.UserRateLimit(cfg.RateLimiter, d.Store), svc.HandleGenerate)
	app.Get("/health", handlers.HandleHealth)

	if cfg.MetricsEnabled() && cfg.Metrics.Path != "" {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

// NewRenderer picks the PDF engine named by pdf.engine.
func NewRenderer(cfg config.Config) document.Renderer {
	paper := cfg.Paper()
	page := document.Page{Width: paper.Width, Height: paper.Height, Margin: cfg.PDF.Margin}
	if cfg.PDF.Engine == config.EngineChrome {
		logging.Info("Using Chrome PDF engine", "exec", cfg.PDF.ChromePath)
		return chrome.NewRenderer(cfg)
	}
	return document.NewFPDF(page)
}

// errorHandler writes every failure as {"error": message}; validation
// failures also carry the offending fields.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{"error": err.Error()}

	var fe *fiber.Error
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		body["error"] = fe.Message
	case errors.As(err, &ve):
		code = fiber.StatusBadRequest
		body["error"] = ve.Message
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
	}

	logging.Warn("Request failed", "path", c.Path(), "status", code, "message", body["error"])
	return c.Status(code).JSON(body)
}
