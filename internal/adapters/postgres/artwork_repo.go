package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

const artworkColumns = `
	a.id, a.title, a.author, COALESCE(a.image_url, ''), COALESCE(a.marbling, ''), COALESCE(a.collage, ''),
	a.hazard_type, ST_Y(a.location::geometry) as lat, ST_X(a.location::geometry) as lon,
	COALESCE(l.count, 0), a.created_at`

const artworkUpsert = `
	INSERT INTO artworks (id, title, author, image_url, marbling, collage, hazard_type, location, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography, COALESCE($10, now()))
	ON CONFLICT (id) DO UPDATE
	SET title = EXCLUDED.title, author = EXCLUDED.author, image_url = EXCLUDED.image_url,
	    marbling = EXCLUDED.marbling, collage = EXCLUDED.collage,
	    hazard_type = EXCLUDED.hazard_type, location = EXCLUDED.location`

// ArtworkRepo implements ports.ArtworkRepository with pgx.
type ArtworkRepo struct {
	db *DB
}

// NewArtworkRepo creates a new ArtworkRepo.
func NewArtworkRepo(db *DB) *ArtworkRepo {
	return &ArtworkRepo{db: db}
}

func upsertArgs(a *domain.Artwork) []any {
	var created any
	if !a.CreatedAt.IsZero() {
		created = a.CreatedAt
	}
	return []any{a.ID, a.Title, a.Author, a.ImageURL, a.Marbling, a.Collage, a.HazardType,
		a.Location.Lon, a.Location.Lat, created}
}

// Upsert inserts or updates a single artwork.
func (r *ArtworkRepo) Upsert(ctx context.Context, a *domain.Artwork) error {
	_, err := r.db.Pool.Exec(ctx, artworkUpsert, upsertArgs(a)...)
	return err
}

// UpsertBatch inserts many artworks using pgx.Batch.
func (r *ArtworkRepo) UpsertBatch(ctx context.Context, artworks []domain.Artwork) error {
	batch := &pgx.Batch{}
	for i := range artworks {
		batch.Queue(artworkUpsert, upsertArgs(&artworks[i])...)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range artworks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns an artwork with its like count.
func (r *ArtworkRepo) GetByID(ctx context.Context, id string) (*domain.Artwork, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+artworkColumns+`
		FROM artworks a LEFT JOIN like_counts l ON l.artwork_id = a.id
		WHERE a.id = $1
	`, id)

	a, err := scanArtwork(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns every artwork, newest first.
func (r *ArtworkRepo) List(ctx context.Context) ([]domain.Artwork, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+artworkColumns+`
		FROM artworks a LEFT JOIN like_counts l ON l.artwork_id = a.id
		ORDER BY a.created_at DESC, a.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artworks []domain.Artwork
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		artworks = append(artworks, *a)
	}
	return artworks, rows.Err()
}

// FindNearby returns artworks within radiusMeters using PostGIS ST_DWithin.
func (r *ArtworkRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Artwork, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+artworkColumns+`,
		       ST_Distance(a.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) as distance
		FROM artworks a LEFT JOIN like_counts l ON l.artwork_id = a.id
		WHERE ST_DWithin(a.location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artworks []domain.Artwork
	for rows.Next() {
		var a domain.Artwork
		var dist float64
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Author, &a.ImageURL, &a.Marbling, &a.Collage,
			&a.HazardType, &a.Location.Lat, &a.Location.Lon,
			&a.Likes, &a.CreatedAt, &dist,
		); err != nil {
			return nil, err
		}
		a.Distance = &dist
		artworks = append(artworks, a)
	}
	return artworks, rows.Err()
}

func scanArtwork(row pgx.Row) (*domain.Artwork, error) {
	var a domain.Artwork
	if err := row.Scan(
		&a.ID, &a.Title, &a.Author, &a.ImageURL, &a.Marbling, &a.Collage,
		&a.HazardType, &a.Location.Lat, &a.Location.Lon,
		&a.Likes, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
