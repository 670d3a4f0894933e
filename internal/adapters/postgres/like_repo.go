package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// LikeRepo implements ports.LikeRepository with pgx.
type LikeRepo struct {
	db *DB
}

// NewLikeRepo creates a new LikeRepo.
func NewLikeRepo(db *DB) *LikeRepo {
	return &LikeRepo{db: db}
}

// Adjust adds delta to the like count and returns the new total. The count
// never goes below zero.
func (r *LikeRepo) Adjust(ctx context.Context, artworkID string, delta int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO like_counts (artwork_id, count, updated_at)
		VALUES ($1, GREATEST($2, 0), now())
		ON CONFLICT (artwork_id) DO UPDATE
		SET count = GREATEST(like_counts.count + $2, 0), updated_at = now()
		RETURNING count
	`, artworkID, delta).Scan(&count)
	return count, err
}

// Count returns the like count, zero for artworks never liked.
func (r *LikeRepo) Count(ctx context.Context, artworkID string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT count FROM like_counts WHERE artwork_id = $1`, artworkID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}
