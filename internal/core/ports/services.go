package ports

import (
	"context"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLikeToggle(ctx context.Context, toggle *domain.LikeToggle) error
	PublishLikeCount(ctx context.Context, count *domain.LikeCount) error
	PublishComment(ctx context.Context, comment *domain.Comment) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeLikeToggles(ctx context.Context, handler func(ctx context.Context, toggle *domain.LikeToggle) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// LikedSetStore remembers which artworks a device has liked.
type LikedSetStore interface {
	// ToggleLiked flips membership and reports whether the artwork is now liked.
	ToggleLiked(ctx context.Context, deviceID, artworkID string) (bool, error)
	IsLiked(ctx context.Context, deviceID, artworkID string) (bool, error)
	Liked(ctx context.Context, deviceID string) ([]string, error)
}

// CommentModerator hands a new comment to the moderation pipeline.
type CommentModerator interface {
	Submit(ctx context.Context, comment *domain.Comment) error
}
