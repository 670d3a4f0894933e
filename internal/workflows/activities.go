package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/metrics"
)

// ModerationActivities holds the activity implementations for the moderation workflow.
type ModerationActivities struct {
	Comments  ports.CommentRepository
	Publisher ports.EventPublisher
}

// ScreenComment decides whether a comment may be shown.
func (a *ModerationActivities) ScreenComment(ctx context.Context, commentID string) (domain.CommentStatus, error) {
	c, err := a.Comments.GetByID(ctx, commentID)
	if err != nil {
		return "", fmt.Errorf("get comment %s: %w", commentID, err)
	}
	return usecases.Screen(c), nil
}

// PublishComment marks a comment visible and broadcasts it.
func (a *ModerationActivities) PublishComment(ctx context.Context, commentID string) error {
	if err := a.Comments.SetStatus(ctx, commentID, domain.CommentVisible); err != nil {
		return fmt.Errorf("set comment %s visible: %w", commentID, err)
	}
	c, err := a.Comments.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("get comment %s: %w", commentID, err)
	}
	if err := a.Publisher.PublishComment(ctx, c); err != nil {
		return fmt.Errorf("publish comment %s: %w", commentID, err)
	}
	metrics.CommentsModerated.WithLabelValues(string(domain.CommentVisible)).Inc()
	return nil
}

// HideComment hides a comment (screening result or saga compensation).
// A comment deleted by its author in the meantime is not an error.
func (a *ModerationActivities) HideComment(ctx context.Context, commentID string) error {
	err := a.Comments.SetStatus(ctx, commentID, domain.CommentHidden)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("hide comment %s: %w", commentID, err)
	}
	metrics.CommentsModerated.WithLabelValues(string(domain.CommentHidden)).Inc()
	slog.Info("comment hidden", "comment", commentID)
	return nil
}
