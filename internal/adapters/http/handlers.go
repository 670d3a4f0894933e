package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/metrics"
)

// ListArtworksHandler returns visible artworks, newest first.
func ListArtworksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		artworks, err := deps.Artworks.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}

		pg := pageFromQuery(c, defaultArtworkLimit, maxArtworkLimit)
		artworks = paginate(artworks, &pg)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: artworks, Pagination: pg})
	}
}

// GetArtworkHandler returns a single artwork by ID.
func GetArtworkHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		artwork, err := deps.Artworks.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(artwork)
	}
}

// NearbyArtworksHandler returns artworks within a radius of a point.
func NearbyArtworksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 500)
		limit := c.QueryInt("limit", 20)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 5000 {
			return errBadRequest(c, "radius must be between 1 and 5000 meters")
		}

		artworks, err := deps.Artworks.FindNearby(c.UserContext(), lat, lon, radius, limit)
		if err != nil {
			return respondError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(artworks)
	}
}

type deviceRequest struct {
	DeviceID string `json:"device_id"`
}

// ToggleLikeHandler flips the calling device's like on an artwork.
func ToggleLikeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deviceRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		res, err := deps.Likes.Toggle(c.UserContext(), c.Params("id"), req.DeviceID)
		if err != nil {
			return respondError(c, err)
		}

		direction := "unlike"
		if res.Liked {
			direction = "like"
		}
		metrics.LikeToggles.WithLabelValues(direction).Inc()

		c.Set("Cache-Control", "no-store")
		return c.JSON(res)
	}
}

// LikeStatusHandler returns the like total and, with ?device_id=, whether
// that device liked the artwork.
func LikeStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Likes.Status(c.UserContext(), c.Params("id"), c.Query("device_id"))
		if err != nil {
			return respondError(c, err)
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(res)
	}
}

// DeviceLikesHandler lists the artworks a device has liked.
func DeviceLikesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids, err := deps.Likes.Liked(c.UserContext(), c.Params("device"))
		if err != nil {
			return respondError(c, err)
		}
		if ids == nil {
			ids = []string{}
		}
		c.Set("Cache-Control", "private, no-cache")
		return c.JSON(fiber.Map{"artwork_ids": ids})
	}
}

// ListCommentsHandler returns visible comments on an artwork.
func ListCommentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		comments, err := deps.Comments.List(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		c.Set("Cache-Control", "no-cache")
		return c.JSON(comments)
	}
}

// CreateCommentHandler accepts a comment for moderation.
func CreateCommentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usecases.NewComment
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.ReplyTo != nil && strings.TrimSpace(*req.ReplyTo) == "" {
			req.ReplyTo = nil
		}

		comment, err := deps.Comments.Create(c.UserContext(), c.Params("id"), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(comment)
	}
}

// DeleteCommentHandler deletes a comment posted from ?device_id=.
func DeleteCommentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Comments.Delete(c.UserContext(), c.Params("id"), c.Query("device_id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
