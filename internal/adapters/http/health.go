package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is stamped at build time with -ldflags "-X .../http.Version=...".
var Version = "dev"

// HealthHandler is the liveness probe. It also reports how many map views
// currently hold a camera session.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		}
		if deps.Sessions != nil {
			resp["camera_sessions"] = deps.Sessions.Count()
		}
		return c.JSON(resp)
	}
}

// dependencyCheck probes one backing service. required marks services the
// API cannot serve artworks without.
type dependencyCheck struct {
	name     string
	required bool
	probe    func(ctx context.Context) string
}

// ReadyHandler is the readiness probe. Postgres must be configured and
// reachable. NATS and Valkey may be left unconfigured, but once configured
// a failing one fails readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := []dependencyCheck{
		{name: "database", required: true, probe: func(ctx context.Context) string {
			if deps.DB == nil {
				return "not configured"
			}
			if err := deps.DB.Ping(ctx); err != nil {
				return "error: " + err.Error()
			}
			return "ok"
		}},
		{name: "nats", probe: func(ctx context.Context) string {
			switch {
			case deps.NATS == nil:
				return "not configured"
			case !deps.NATS.IsConnected():
				return "disconnected"
			}
			return "ok"
		}},
		{name: "cache", probe: func(ctx context.Context) string {
			if deps.Cache == nil {
				return "not configured"
			}
			if err := deps.Cache.Ping(ctx); err != nil {
				return "error: " + err.Error()
			}
			return "ok"
		}},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, chk := range checks {
			res := chk.probe(ctx)
			results[chk.name] = res
			if res != "ok" && (chk.required || res != "not configured") {
				ready = false
			}
		}

		status, code := "ready", fiber.StatusOK
		if !ready {
			status, code = "not ready", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "checks": results})
	}
}
