package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// cachePolicy picks Cache-Control for a GET route template. Live camera
// state is never stored; per-device data stays private; artwork metadata is
// public but short-lived because like counts move under it.
func cachePolicy(route string) string {
	switch {
	case route == "/v1/health" || route == "/v1/ready":
		return "no-cache"
	case route == "/metrics":
		return "no-store"
	case strings.HasPrefix(route, "/v1/sessions"):
		return "no-store"
	case strings.HasPrefix(route, "/v1/devices"):
		return "private, no-cache"
	case strings.HasSuffix(route, "/likes"), strings.HasSuffix(route, "/comments"):
		return "no-cache"
	case route == "/v1/artworks/nearby":
		return "public, max-age=60"
	case strings.HasPrefix(route, "/v1/artworks"):
		return "public, max-age=30"
	case strings.HasPrefix(route, "/docs"):
		return "public, max-age=300"
	}
	return ""
}

// CachingMiddleware fills in Cache-Control for GET responses whose handler
// did not set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}
		if policy := cachePolicy(c.Route().Path); policy != "" {
			c.Set(fiber.HeaderCacheControl, policy)
		}
		return err
	}
}

// ETagMiddleware tags cacheable GET responses with a weak ETag and answers
// a matching If-None-Match with 304. Responses marked no-store are skipped.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		if strings.Contains(string(c.Response().Header.Peek(fiber.HeaderCacheControl)), "no-store") {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		sum := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(sum[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if etagMatches(c.Get(fiber.HeaderIfNoneMatch), etag) {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

// etagMatches reports whether an If-None-Match list names etag. Weak
// comparison: W/ prefixes are ignored on both sides.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}
