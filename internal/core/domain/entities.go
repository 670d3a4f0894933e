package domain

import (
	"time"
)

// PopularLikeThreshold is the like count above which an artwork is marked popular.
const PopularLikeThreshold = 35

// Artwork is a survey submission pinned on the map.
type Artwork struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	ImageURL   string    `json:"image_url,omitempty"`
	Marbling   string    `json:"marbling,omitempty"`
	Collage    string    `json:"collage,omitempty"`
	HazardType string    `json:"hazard_type"`
	Location   GeoPoint  `json:"location"`
	Likes      int       `json:"likes"`
	IsNew      bool      `json:"is_new"`
	Distance   *float64  `json:"distance,omitempty"` // computed field
	CreatedAt  time.Time `json:"created_at"`
}

// Popular reports whether the artwork passed the popularity threshold.
func (a Artwork) Popular() bool {
	return a.Likes > PopularLikeThreshold
}

// CommentStatus tracks moderation progress.
type CommentStatus string

const (
	CommentPending CommentStatus = "pending"
	CommentVisible CommentStatus = "visible"
	CommentHidden  CommentStatus = "hidden"
)

// Comment is a message left on an artwork, optionally replying to another comment.
type Comment struct {
	ID        string        `json:"id"`
	ArtworkID string        `json:"artwork_id"`
	DeviceID  string        `json:"-"`
	Author    string        `json:"author"`
	Body      string        `json:"body"`
	ReplyTo   *string       `json:"reply_to,omitempty"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// LikeToggle is emitted when a device likes or unlikes an artwork.
type LikeToggle struct {
	ArtworkID string    `json:"artwork_id"`
	DeviceID  string    `json:"device_id"`
	Delta     int       `json:"delta"` // +1 like, -1 unlike
	Time      time.Time `json:"time"`
}

// LikeCount is the aggregated like total for an artwork.
type LikeCount struct {
	ArtworkID string `json:"artwork_id"`
	Count     int    `json:"count"`
}
