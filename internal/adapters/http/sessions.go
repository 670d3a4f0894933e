package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/wshost"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/metrics"
)

// CameraSessionHandler upgrades a map view to a camera session. The
// connection is the camera host; the controller lives as long as it does.
func CameraSessionHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		id := deps.Sessions.NewID()
		log := slog.Default().With("remote", c.RemoteAddr().String())

		cam, center, err := deps.Sessions.Home()
		if err != nil {
			log.Error("camera session home", "error", err)
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		session := wshost.NewSession(id, c, deps.Sessions.SpatialReference(), cam, center, log)
		ctrl, err := deps.Sessions.Open(ctx, id, session.Host())
		if err != nil {
			log.Error("open camera session", "error", err)
			return
		}
		defer deps.Sessions.Close(id)

		metrics.ActiveCameraSessions.Inc()
		defer metrics.ActiveCameraSessions.Dec()

		log.Info("camera session opened", "session", id)
		if err := session.Serve(ctx, ctrl); err != nil {
			log.Warn("camera session ended", "session", id, "error", err)
			return
		}
		log.Info("camera session closed", "session", id)
	}
}

// SessionStatusHandler returns the controller snapshot of a session.
func SessionStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := deps.Sessions.Status(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(st)
	}
}

type tiltRequest struct {
	Direction domain.TiltDirection `json:"direction"`
}

// SessionTiltHandler steps the session tilt up or down.
func SessionTiltHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req tiltRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		tilt, err := deps.Sessions.AdjustTilt(c.UserContext(), c.Params("id"), req.Direction)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"tilt": tilt, "top_down": domain.IsTopDown(tilt)})
	}
}

type focusRequest struct {
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// SessionFocusHandler flies the session camera to a point.
func SessionFocusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req focusRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Longitude == nil || req.Latitude == nil {
			return errBadRequest(c, "longitude and latitude are required")
		}

		p := domain.GeoPoint{Lat: *req.Latitude, Lon: *req.Longitude}
		if err := deps.Sessions.FocusOn(c.UserContext(), c.Params("id"), p); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}

// SessionResetHandler returns the session camera to the home view.
func SessionResetHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.ResetView(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	}
}
