package http

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artem13815/productivity/api/http/handlers"
	"github.com/artem13815/productivity/api/http/middleware"
	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/storage/photo"
)

// NewApp builds the Fiber app with the shared middleware stack.
func NewApp(log *slog.Logger, corsOrigins []string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "productivity-api",
		ErrorHandler: presenter.ErrorHandler(log),
		// room for a full-size photo plus the multipart envelope
		BodyLimit: photo.MaxBytes + 1<<20,
	})
	app.Use(requestid.New())
	app.Use(middleware.Metrics())
	app.Use(middleware.RequestLogger(log))
	// inside the logger and metrics so a panic still shows up as a logged, counted 500
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	return app
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Tasks  *handlers.TaskHandler
	Goals  *handlers.GoalHandler
	Stats  *handlers.StatsHandler
	Health *handlers.HealthHandler
}

// Options configures the cross-cutting parts of the router.
type Options struct {
	// Authenticate runs before every resource route.
	Authenticate fiber.Handler
	// AuthLimiter guards register and login; nil disables it.
	AuthLimiter fiber.Handler
	// UploadDir is served under /uploads when set.
	UploadDir string
}

// Register wires all HTTP routes onto given Fiber app. Resource routes are
// served at the root, which the web client calls, and mirrored under /api/v1.
func Register(app *fiber.App, h Handlers, opts Options) {
	// Health and readiness endpoints for probes/monitoring
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)
	if opts.UploadDir != "" {
		app.Static("/uploads", opts.UploadDir)
	}

	mount(app, h, opts)
	mount(app.Group("/api/v1"), h, opts)
}

func mount(r fiber.Router, h Handlers, opts Options) {
	limited := func(handler fiber.Handler) []fiber.Handler {
		if opts.AuthLimiter == nil {
			return []fiber.Handler{handler}
		}
		return []fiber.Handler{opts.AuthLimiter, handler}
	}
	r.Post("/register", limited(h.Auth.Register)...)
	r.Post("/login", limited(h.Auth.Login)...)

	protected := func(handler fiber.Handler) []fiber.Handler {
		if opts.Authenticate == nil {
			return []fiber.Handler{handler}
		}
		return []fiber.Handler{opts.Authenticate, handler}
	}

	r.Get("/tasks", protected(h.Tasks.List)...)
	r.Post("/tasks", protected(h.Tasks.Create)...)
	r.Patch("/tasks/:id", protected(h.Tasks.Update)...)
	r.Delete("/tasks/:id", protected(h.Tasks.Delete)...)
	r.Put("/tasks/:id/position", protected(h.Tasks.Reorder)...)

	r.Get("/goals", protected(h.Goals.List)...)
	r.Post("/goals", protected(h.Goals.Create)...)
	r.Patch("/goals/:id", protected(h.Goals.Update)...)
	r.Delete("/goals/:id", protected(h.Goals.Delete)...)

	r.Get("/stats", protected(h.Stats.Summary)...)
}
