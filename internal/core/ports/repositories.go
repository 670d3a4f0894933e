package ports

import (
	"context"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// ArtworkRepository persists survey artworks.
type ArtworkRepository interface {
	Upsert(ctx context.Context, artwork *domain.Artwork) error
	UpsertBatch(ctx context.Context, artworks []domain.Artwork) error
	GetByID(ctx context.Context, id string) (*domain.Artwork, error)
	List(ctx context.Context) ([]domain.Artwork, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Artwork, error)
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListVisible(ctx context.Context, artworkID string) ([]domain.Comment, error)
	SetStatus(ctx context.Context, id string, status domain.CommentStatus) error
	DeleteOwned(ctx context.Context, id, deviceID string) error
}

// LikeRepository persists aggregated like counts.
type LikeRepository interface {
	Adjust(ctx context.Context, artworkID string, delta int) (int, error)
	Count(ctx context.Context, artworkID string) (int, error)
}
