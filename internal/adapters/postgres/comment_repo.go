package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// CommentRepo implements ports.CommentRepository with pgx.
type CommentRepo struct {
	db *DB
}

// NewCommentRepo creates a new CommentRepo.
func NewCommentRepo(db *DB) *CommentRepo {
	return &CommentRepo{db: db}
}

// Create inserts a comment. CreatedAt is filled from the database.
func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO comments (id, artwork_id, device_id, author, body, reply_to, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, c.ID, c.ArtworkID, c.DeviceID, c.Author, c.Body, c.ReplyTo, string(c.Status)).Scan(&c.CreatedAt)
}

// GetByID returns a comment in any status.
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	var status string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, artwork_id, device_id, author, body, reply_to, status, created_at
		FROM comments WHERE id = $1
	`, id).Scan(&c.ID, &c.ArtworkID, &c.DeviceID, &c.Author, &c.Body, &c.ReplyTo, &status, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Status = domain.CommentStatus(status)
	return &c, nil
}

// ListVisible returns the visible comments of an artwork, oldest first so
// replies follow their parent.
func (r *CommentRepo) ListVisible(ctx context.Context, artworkID string) ([]domain.Comment, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, artwork_id, author, body, reply_to, status, created_at
		FROM comments
		WHERE artwork_id = $1 AND status = 'visible'
		ORDER BY created_at, id
	`, artworkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		var status string
		if err := rows.Scan(&c.ID, &c.ArtworkID, &c.Author, &c.Body, &c.ReplyTo, &status, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = domain.CommentStatus(status)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// SetStatus moves a comment through moderation.
func (r *CommentRepo) SetStatus(ctx context.Context, id string, status domain.CommentStatus) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE comments SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteOwned removes a comment only if deviceID wrote it.
func (r *CommentRepo) DeleteOwned(ctx context.Context, id, deviceID string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND device_id = $2`, id, deviceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
