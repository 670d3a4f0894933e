package http

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

type loggerKey struct{}

// RequestLoggerMiddleware stores a logger tagged with the request ID and,
// when the caller sent one, its device ID in the user context.
// Handlers and services retrieve it with LoggerFromCtx.
func RequestLoggerMiddleware(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := base
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			log = log.With("request_id", rid)
		}
		if device := c.Query("device_id"); device != "" {
			log = log.With("device_id", device)
		}
		c.SetUserContext(context.WithValue(c.UserContext(), loggerKey{}, log))
		return c.Next()
	}
}

// LoggerFromCtx returns the request logger, or slog.Default outside a request.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// AccessLogMiddleware writes one line per request. Routes are logged by
// template so that /v1/sessions/:id and /v1/artworks/:id aggregate, with the
// session or artwork ID as its own attribute. Probes and scrapes go to Debug.
func AccessLogMiddleware(base *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		route := c.Route().Path

		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
		}
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			attrs = append(attrs, slog.String("request_id", rid))
		}
		if id := c.Params("id"); id != "" {
			switch {
			case strings.HasPrefix(route, "/v1/sessions"):
				attrs = append(attrs, slog.String("session", id), slog.Bool("camera", true))
			case strings.HasPrefix(route, "/v1/artworks"):
				attrs = append(attrs, slog.String("artwork_id", id))
			case strings.HasPrefix(route, "/v1/comments"):
				attrs = append(attrs, slog.String("comment_id", id))
			}
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case route == "/metrics" || route == "/v1/health" || route == "/v1/ready":
			level = slog.LevelDebug
		}
		base.LogAttrs(c.UserContext(), level, "http request", attrs...)
		return err
	}
}
