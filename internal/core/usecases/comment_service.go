package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
)

const (
	maxCommentLength = 500
	anonymousAuthor  = "匿名ユーザー"
)

// NewComment is the input for CommentService.Create.
type NewComment struct {
	DeviceID string  `json:"device_id"`
	Author   string  `json:"author"`
	Body     string  `json:"body"`
	ReplyTo  *string `json:"reply_to,omitempty"`
}

// CommentService handles comment creation, listing and deletion.
type CommentService struct {
	artworks  ports.ArtworkRepository
	comments  ports.CommentRepository
	moderator ports.CommentModerator
	now       func() time.Time
}

// NewCommentService creates a new CommentService.
func NewCommentService(artworks ports.ArtworkRepository, comments ports.CommentRepository, moderator ports.CommentModerator) *CommentService {
	return &CommentService{
		artworks:  artworks,
		comments:  comments,
		moderator: moderator,
		now:       time.Now,
	}
}

// Create stores a pending comment and submits it for moderation. Replies
// must target a comment on the same artwork.
func (s *CommentService) Create(ctx context.Context, artworkID string, in NewComment) (*domain.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: comment body is empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", domain.ErrInvalidInput, maxCommentLength)
	}
	if strings.TrimSpace(in.DeviceID) == "" {
		return nil, fmt.Errorf("%w: device_id is required", domain.ErrInvalidInput)
	}

	if _, err := s.artworks.GetByID(ctx, artworkID); err != nil {
		return nil, err
	}

	if in.ReplyTo != nil {
		parent, err := s.comments.GetByID(ctx, *in.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("reply target: %w", err)
		}
		if parent.ArtworkID != artworkID {
			return nil, fmt.Errorf("%w: reply target belongs to another artwork", domain.ErrInvalidInput)
		}
	}

	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = anonymousAuthor
	}

	c := &domain.Comment{
		ID:        uuid.NewString(),
		ArtworkID: artworkID,
		DeviceID:  in.DeviceID,
		Author:    author,
		Body:      body,
		ReplyTo:   in.ReplyTo,
		Status:    domain.CommentPending,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := s.moderator.Submit(ctx, c); err != nil {
		return nil, fmt.Errorf("submit for moderation: %w", err)
	}
	return c, nil
}

// List returns the visible comments on an artwork, oldest first.
func (s *CommentService) List(ctx context.Context, artworkID string) ([]domain.Comment, error) {
	return s.comments.ListVisible(ctx, artworkID)
}

// Delete removes a comment posted from deviceID.
func (s *CommentService) Delete(ctx context.Context, id, deviceID string) error {
	if strings.TrimSpace(deviceID) == "" {
		return fmt.Errorf("%w: device_id is required", domain.ErrInvalidInput)
	}
	return s.comments.DeleteOwned(ctx, id, deviceID)
}

// Screen decides the status a pending comment should end in.
func Screen(c *domain.Comment) domain.CommentStatus {
	if domain.ContainsHiddenKeyword(c.Body) || domain.ContainsHiddenKeyword(c.Author) {
		return domain.CommentHidden
	}
	return domain.CommentVisible
}
