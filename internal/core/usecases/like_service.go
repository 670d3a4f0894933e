package usecases

import (
	"context"
	"fmt"
	"hash/maphash"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
)

// LikeResult is the outcome of a like toggle as seen by the device.
type LikeResult struct {
	ArtworkID string `json:"artwork_id"`
	Liked     bool   `json:"liked"`
	Count     int    `json:"count"`
	Popular   bool   `json:"popular"`
}

const toggleStripes = 64

// LikeService toggles per-device likes and keeps the aggregated counts.
type LikeService struct {
	artworks  ports.ArtworkRepository
	liked     ports.LikedSetStore
	likes     ports.LikeRepository
	publisher ports.EventPublisher
	now       func() time.Time
	log       *slog.Logger

	// In this process, toggles of one device on one artwork run one at a
	// time, so a revert after a failed publish cannot undo a later toggle.
	seed    maphash.Seed
	stripes [toggleStripes]sync.Mutex
}

// LikeOption configures a LikeService.
type LikeOption func(*LikeService)

// WithLikeLogger sets the logger. Defaults to slog.Default().
func WithLikeLogger(l *slog.Logger) LikeOption {
	return func(s *LikeService) { s.log = l }
}

// NewLikeService creates a new LikeService.
func NewLikeService(
	artworks ports.ArtworkRepository,
	liked ports.LikedSetStore,
	likes ports.LikeRepository,
	publisher ports.EventPublisher,
	opts ...LikeOption,
) *LikeService {
	s := &LikeService{
		artworks:  artworks,
		liked:     liked,
		likes:     likes,
		publisher: publisher,
		now:       time.Now,
		log:       slog.Default(),
		seed:      maphash.MakeSeed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LikeService) stripe(deviceID, artworkID string) *sync.Mutex {
	h := maphash.String(s.seed, deviceID+"\x00"+artworkID)
	return &s.stripes[h%toggleStripes]
}

// Toggle flips the device's like on an artwork. The returned count is
// optimistic: the persisted total is adjusted asynchronously by Apply.
func (s *LikeService) Toggle(ctx context.Context, artworkID, deviceID string) (*LikeResult, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device_id is required", domain.ErrInvalidInput)
	}
	if _, err := s.artworks.GetByID(ctx, artworkID); err != nil {
		return nil, err
	}

	mu := s.stripe(deviceID, artworkID)
	mu.Lock()
	defer mu.Unlock()

	liked, err := s.liked.ToggleLiked(ctx, deviceID, artworkID)
	if err != nil {
		return nil, fmt.Errorf("toggle liked set: %w", err)
	}

	delta := -1
	if liked {
		delta = 1
	}

	toggle := &domain.LikeToggle{
		ArtworkID: artworkID,
		DeviceID:  deviceID,
		Delta:     delta,
		Time:      s.now(),
	}
	if err := s.publisher.PublishLikeToggle(ctx, toggle); err != nil {
		// Undo the set change so the device can retry.
		if _, rerr := s.liked.ToggleLiked(ctx, deviceID, artworkID); rerr != nil {
			s.log.Warn("revert liked set after publish failure",
				"artwork_id", artworkID, "device_id", deviceID, "liked", liked, "error", rerr)
		}
		return nil, fmt.Errorf("publish like toggle: %w", err)
	}

	count, err := s.likes.Count(ctx, artworkID)
	if err != nil {
		return nil, fmt.Errorf("like count: %w", err)
	}
	count += delta
	if count < 0 {
		count = 0
	}

	return &LikeResult{
		ArtworkID: artworkID,
		Liked:     liked,
		Count:     count,
		Popular:   count > domain.PopularLikeThreshold,
	}, nil
}

// Status reports whether the device liked the artwork and the current total.
func (s *LikeService) Status(ctx context.Context, artworkID, deviceID string) (*LikeResult, error) {
	count, err := s.likes.Count(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	res := &LikeResult{ArtworkID: artworkID, Count: count, Popular: count > domain.PopularLikeThreshold}
	if deviceID != "" {
		if res.Liked, err = s.liked.IsLiked(ctx, deviceID, artworkID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Liked lists the artworks a device has liked.
func (s *LikeService) Liked(ctx context.Context, deviceID string) ([]string, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, fmt.Errorf("%w: device_id is required", domain.ErrInvalidInput)
	}
	return s.liked.Liked(ctx, deviceID)
}

// Apply persists a toggle and broadcasts the new total.
func (s *LikeService) Apply(ctx context.Context, toggle *domain.LikeToggle) error {
	if toggle.Delta != 1 && toggle.Delta != -1 {
		return fmt.Errorf("%w: like delta %d", domain.ErrInvalidInput, toggle.Delta)
	}

	count, err := s.likes.Adjust(ctx, toggle.ArtworkID, toggle.Delta)
	if err != nil {
		return fmt.Errorf("adjust like count: %w", err)
	}

	// Broadcast failures are not retried; the next toggle carries the total.
	_ = s.publisher.PublishLikeCount(ctx, &domain.LikeCount{ArtworkID: toggle.ArtworkID, Count: count})
	return nil
}
