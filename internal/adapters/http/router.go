package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/metrics"
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

	// Request-scoped logger and one access line per request
	app.Use(RequestLoggerMiddleware(slog.Default()))
	app.Use(AccessLogMiddleware(slog.Default()))

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

	// Conditional GETs; Cache-Control is filled in first so no-store is honoured
	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	upgrade := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Camera session WebSocket (registered before /v1/sessions/:id)
	app.Use("/v1/sessions/ws", upgrade)
	app.Get("/v1/sessions/ws", websocket.New(CameraSessionHandler(deps)))

	// REST API v1: 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/artworks", timeout.NewWithContext(ListArtworksHandler(deps), 15*time.Second))
	v1.Get("/artworks/nearby", timeout.NewWithContext(NearbyArtworksHandler(deps), 15*time.Second))
	v1.Get("/artworks/:id", timeout.NewWithContext(GetArtworkHandler(deps), 15*time.Second))
	v1.Get("/artworks/:id/likes", timeout.NewWithContext(LikeStatusHandler(deps), 15*time.Second))
	v1.Post("/artworks/:id/like", timeout.NewWithContext(ToggleLikeHandler(deps), 15*time.Second))
	v1.Get("/artworks/:id/comments", timeout.NewWithContext(ListCommentsHandler(deps), 15*time.Second))
	v1.Post("/artworks/:id/comments", timeout.NewWithContext(CreateCommentHandler(deps), 15*time.Second))
	v1.Delete("/comments/:id", timeout.NewWithContext(DeleteCommentHandler(deps), 15*time.Second))
	v1.Get("/devices/:device/likes", timeout.NewWithContext(DeviceLikesHandler(deps), 15*time.Second))

	// Camera sessions
	v1.Get("/sessions/:id", timeout.NewWithContext(SessionStatusHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/tilt", timeout.NewWithContext(SessionTiltHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/focus", timeout.NewWithContext(SessionFocusHandler(deps), 15*time.Second))
	v1.Post("/sessions/:id/reset", timeout.NewWithContext(SessionResetHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// Feed WebSocket
	app.Use("/ws", upgrade)
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
