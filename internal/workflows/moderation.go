package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// ModerationTaskQueue is the default task queue for the moderation worker.
const ModerationTaskQueue = "comment-moderation"

// ModerationInput is the input for the moderation workflow.
type ModerationInput struct {
	CommentID string
	ArtworkID string
}

// ModerationWorkflow screens a pending comment and publishes it to the
// artwork feed. If publishing fails the comment is hidden (saga
// compensation) so it never stays pending.
func ModerationWorkflow(ctx workflow.Context, input ModerationInput) (domain.CommentStatus, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting moderation workflow", "comment", input.CommentID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Screen the comment text
	var status domain.CommentStatus
	if err := workflow.ExecuteActivity(ctx, "ScreenComment", input.CommentID).Get(ctx, &status); err != nil {
		return "", err
	}

	if status == domain.CommentHidden {
		if err := workflow.ExecuteActivity(ctx, "HideComment", input.CommentID).Get(ctx, nil); err != nil {
			return "", err
		}
		logger.Info("Comment hidden by screening", "comment", input.CommentID)
		return domain.CommentHidden, nil
	}

	// Step 2: Make visible and broadcast
	err := workflow.ExecuteActivity(ctx, "PublishComment", input.CommentID).Get(ctx, nil)
	if err != nil {
		logger.Warn("publish failed, compensating", "error", err)
		// Compensate: hide the comment
		_ = workflow.ExecuteActivity(ctx, "HideComment", input.CommentID).Get(ctx, nil)
		return domain.CommentHidden, err
	}

	logger.Info("Comment published", "comment", input.CommentID)
	return domain.CommentVisible, nil
}
