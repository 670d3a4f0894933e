package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/geospatial"
)

// newArtworkCount is how many of the most recent artworks are badged as new.
const newArtworkCount = 3

const artworkListKey = "artworks:list"

// ArtworkService handles artwork listing and import.
type ArtworkService struct {
	artworks ports.ArtworkRepository
	cache    ports.CacheService
}

// NewArtworkService creates a new ArtworkService.
func NewArtworkService(artworks ports.ArtworkRepository, cache ports.CacheService) *ArtworkService {
	return &ArtworkService{artworks: artworks, cache: cache}
}

// List returns the publicly visible artworks, newest first. The newest three
// carry IsNew.
func (s *ArtworkService) List(ctx context.Context) ([]domain.Artwork, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, artworkListKey); err == nil {
			var artworks []domain.Artwork
			if err := json.Unmarshal(data, &artworks); err == nil {
				return artworks, nil
			}
		}
	}

	all, err := s.artworks.List(ctx)
	if err != nil {
		return nil, err
	}

	artworks := visible(all)
	sort.SliceStable(artworks, func(i, j int) bool {
		return artworks[i].CreatedAt.After(artworks[j].CreatedAt)
	})
	for i := range artworks {
		artworks[i].IsNew = i < newArtworkCount
	}

	// Short TTL: like counts move
	if s.cache != nil {
		if data, err := json.Marshal(artworks); err == nil {
			_ = s.cache.Set(ctx, artworkListKey, data, 30)
		}
	}

	return artworks, nil
}

// GetByID returns a single visible artwork.
func (s *ArtworkService) GetByID(ctx context.Context, id string) (*domain.Artwork, error) {
	a, err := s.artworks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isVisible(*a) {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// FindNearby returns visible artworks within radiusMeters of the given point,
// nearest first.
func (s *ArtworkService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Artwork, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidInput)
	}
	if radiusMeters <= 0 || radiusMeters > 5000 {
		radiusMeters = 500
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	found, err := s.artworks.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	// Repositories may over-fetch; anything past the radius is dropped here.
	origin := domain.GeoPoint{Lat: lat, Lon: lon}
	box := geospatial.BoundingBox(origin, radiusMeters)
	artworks := make([]domain.Artwork, 0, len(found))
	for _, a := range visible(found) {
		if !geospatial.Contains(box, a.Location) {
			continue
		}
		if a.Distance == nil {
			d := geospatial.Distance(origin, a.Location)
			a.Distance = &d
		}
		if *a.Distance > radiusMeters {
			continue
		}
		artworks = append(artworks, a)
	}
	sort.SliceStable(artworks, func(i, j int) bool {
		return *artworks[i].Distance < *artworks[j].Distance
	})
	return artworks, nil
}

// Import stores artworks from a survey export and returns how many were kept.
// Records without an ID or title are skipped.
func (s *ArtworkService) Import(ctx context.Context, artworks []domain.Artwork) (int, error) {
	batch := make([]domain.Artwork, 0, len(artworks))
	for _, a := range artworks {
		if a.ID == "" || strings.TrimSpace(a.Title) == "" {
			continue
		}
		batch = append(batch, a)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := s.artworks.UpsertBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("upsert artworks: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, artworkListKey)
	}
	return len(batch), nil
}

func isVisible(a domain.Artwork) bool {
	return strings.TrimSpace(a.Title) != "" && !domain.ContainsHiddenKeyword(a.Title)
}

func visible(all []domain.Artwork) []domain.Artwork {
	out := make([]domain.Artwork, 0, len(all))
	for _, a := range all {
		if isVisible(a) {
			out = append(out, a)
		}
	}
	return out
}
