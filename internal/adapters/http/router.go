package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/SomeLazyDayz/Backend-15-11/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Legacy flat routes kept for old mobile clients, with sunset headers
	sunset := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{Path: "/register_donor", SunsetDate: sunset, Alternative: "/v1/donors"},
		{Path: "/login", SunsetDate: sunset, Alternative: "/v1/auth/login"},
		{Path: "/create_alert", SunsetDate: sunset, Alternative: "/v1/alerts"},
		{Path: "/users", SunsetDate: sunset, Alternative: "/v1/donors"},
		{Path: "/users/:id", SunsetDate: sunset, Alternative: "/v1/donors/{id}"},
		{Path: "/hospitals", SunsetDate: sunset, Alternative: "/v1/hospitals"},
	}))

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Post("/donors", timeout.NewWithContext(RegisterDonorHandler(deps), 15*time.Second))
	v1.Get("/donors", timeout.NewWithContext(ListDonorsHandler(deps), 15*time.Second))
	v1.Get("/donors/:id", timeout.NewWithContext(GetDonorHandler(deps), 15*time.Second))
	v1.Patch("/donors/:id", timeout.NewWithContext(UpdateDonorHandler(deps), 15*time.Second))
	v1.Put("/donors/:id", timeout.NewWithContext(UpdateDonorHandler(deps), 15*time.Second))
	v1.Post("/auth/login", timeout.NewWithContext(LoginHandler(deps), 15*time.Second))
	v1.Get("/hospitals", timeout.NewWithContext(ListHospitalsHandler(deps), 15*time.Second))
	v1.Get("/hospitals/:id", timeout.NewWithContext(GetHospitalHandler(deps), 15*time.Second))
	v1.Post("/alerts", timeout.NewWithContext(CreateAlertHandler(deps), 15*time.Second))
	v1.Get("/stats", timeout.NewWithContext(StatsHandler(deps), 15*time.Second))

	// Legacy aliases
	app.Post("/register_donor", timeout.NewWithContext(RegisterDonorHandler(deps), 15*time.Second))
	app.Post("/login", timeout.NewWithContext(LoginHandler(deps), 15*time.Second))
	app.Post("/create_alert", timeout.NewWithContext(CreateAlertHandler(deps), 15*time.Second))
	app.Get("/users", timeout.NewWithContext(ListDonorsHandler(deps), 15*time.Second))
	app.Put("/users/:id", timeout.NewWithContext(UpdateDonorHandler(deps), 15*time.Second))
	app.Patch("/users/:id", timeout.NewWithContext(UpdateDonorHandler(deps), 15*time.Second))
	app.Get("/hospitals", timeout.NewWithContext(ListHospitalsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
