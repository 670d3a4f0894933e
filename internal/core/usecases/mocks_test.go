package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// --- Mock ArtworkRepository ---

type mockArtworkRepo struct {
	getByIDFn     func(ctx context.Context, id string) (*domain.Artwork, error)
	listFn        func(ctx context.Context) ([]domain.Artwork, error)
	findNearbyFn  func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Artwork, error)
	upsertBatchFn func(ctx context.Context, artworks []domain.Artwork) error
}

func (m *mockArtworkRepo) Upsert(ctx context.Context, a *domain.Artwork) error { return nil }

func (m *mockArtworkRepo) UpsertBatch(ctx context.Context, artworks []domain.Artwork) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, artworks)
	}
	return nil
}

func (m *mockArtworkRepo) GetByID(ctx context.Context, id string) (*domain.Artwork, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Artwork{ID: id, Title: "作品"}, nil
}

func (m *mockArtworkRepo) List(ctx context.Context) ([]domain.Artwork, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockArtworkRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Artwork, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

// --- Mock CommentRepository ---

type mockCommentRepo struct {
	createFn      func(ctx context.Context, c *domain.Comment) error
	getByIDFn     func(ctx context.Context, id string) (*domain.Comment, error)
	listVisibleFn func(ctx context.Context, artworkID string) ([]domain.Comment, error)
	deleteOwnedFn func(ctx context.Context, id, deviceID string) error
}

func (m *mockCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockCommentRepo) ListVisible(ctx context.Context, artworkID string) ([]domain.Comment, error) {
	if m.listVisibleFn != nil {
		return m.listVisibleFn(ctx, artworkID)
	}
	return nil, nil
}

func (m *mockCommentRepo) SetStatus(ctx context.Context, id string, status domain.CommentStatus) error {
	return nil
}

func (m *mockCommentRepo) DeleteOwned(ctx context.Context, id, deviceID string) error {
	if m.deleteOwnedFn != nil {
		return m.deleteOwnedFn(ctx, id, deviceID)
	}
	return nil
}

// --- Mock LikeRepository ---

type mockLikeRepo struct {
	adjustFn func(ctx context.Context, artworkID string, delta int) (int, error)
	countFn  func(ctx context.Context, artworkID string) (int, error)
}

func (m *mockLikeRepo) Adjust(ctx context.Context, artworkID string, delta int) (int, error) {
	if m.adjustFn != nil {
		return m.adjustFn(ctx, artworkID, delta)
	}
	return 0, nil
}

func (m *mockLikeRepo) Count(ctx context.Context, artworkID string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, artworkID)
	}
	return 0, nil
}

// --- In-memory LikedSetStore ---

type memLikedSet struct {
	mu   sync.Mutex
	sets map[string]map[string]bool
}

func newMemLikedSet() *memLikedSet {
	return &memLikedSet{sets: make(map[string]map[string]bool)}
}

func (m *memLikedSet) ToggleLiked(ctx context.Context, deviceID, artworkID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.sets[deviceID]
	if set == nil {
		set = make(map[string]bool)
		m.sets[deviceID] = set
	}
	if set[artworkID] {
		delete(set, artworkID)
		return false, nil
	}
	set[artworkID] = true
	return true, nil
}

func (m *memLikedSet) IsLiked(ctx context.Context, deviceID, artworkID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[deviceID][artworkID], nil
}

func (m *memLikedSet) Liked(ctx context.Context, deviceID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.sets[deviceID] {
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	toggleFn func(ctx context.Context, t *domain.LikeToggle) error
	toggles  []domain.LikeToggle
	counts   []domain.LikeCount
	comments []domain.Comment
}

func (m *mockPublisher) PublishLikeToggle(ctx context.Context, t *domain.LikeToggle) error {
	if m.toggleFn != nil {
		if err := m.toggleFn(ctx, t); err != nil {
			return err
		}
	}
	m.toggles = append(m.toggles, *t)
	return nil
}

func (m *mockPublisher) PublishLikeCount(ctx context.Context, c *domain.LikeCount) error {
	m.counts = append(m.counts, *c)
	return nil
}

func (m *mockPublisher) PublishComment(ctx context.Context, c *domain.Comment) error {
	m.comments = append(m.comments, *c)
	return nil
}

// --- In-memory CacheService ---

var errMiss = errors.New("miss")

type memCache struct {
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errMiss
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Mock CommentModerator ---

type mockModerator struct {
	submitFn  func(ctx context.Context, c *domain.Comment) error
	submitted []string
}

func (m *mockModerator) Submit(ctx context.Context, c *domain.Comment) error {
	m.submitted = append(m.submitted, c.ID)
	if m.submitFn != nil {
		return m.submitFn(ctx, c)
	}
	return nil
}

// --- Mock CameraHost ---

type mockHost struct {
	mu      sync.Mutex
	sr      domain.SpatialReference
	cam     domain.Camera
	center  domain.MapPoint
	targets []domain.CameraTarget
}

func (m *mockHost) Camera() domain.Camera {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cam
}

func (m *mockHost) Center() domain.MapPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center
}

func (m *mockHost) SpatialReference() domain.SpatialReference { return m.sr }

func (m *mockHost) AnimateTo(ctx context.Context, target domain.CameraTarget, opts domain.AnimateOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, target)
	return nil
}

func (m *mockHost) animations() []domain.CameraTarget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CameraTarget(nil), m.targets...)
}

// --- Mock GeometryEngine ---

type mockGeometry struct{}

func (mockGeometry) Contains(area *domain.AllowedArea, p domain.MapPoint) (bool, error) {
	return true, nil
}

func (mockGeometry) Project(p domain.GeoPoint, sr domain.SpatialReference) (domain.MapPoint, error) {
	return domain.MapPoint{X: p.Lon, Y: p.Lat, SpatialReference: sr}, nil
}

func (mockGeometry) Unproject(p domain.MapPoint) (domain.GeoPoint, error) {
	return domain.GeoPoint{Lat: p.Y, Lon: p.X}, nil
}
