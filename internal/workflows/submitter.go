package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Submitter implements ports.CommentModerator by starting a moderation
// workflow per comment.
type Submitter struct {
	client    client.Client
	taskQueue string
}

// NewSubmitter creates a Submitter on the given task queue.
func NewSubmitter(c client.Client, taskQueue string) *Submitter {
	if taskQueue == "" {
		taskQueue = ModerationTaskQueue
	}
	return &Submitter{client: c, taskQueue: taskQueue}
}

// Submit starts moderation for c. The workflow ID is derived from the comment
// ID so a retried submit never moderates twice.
func (s *Submitter) Submit(ctx context.Context, c *domain.Comment) error {
	opts := client.StartWorkflowOptions{
		ID:        "moderate-" + c.ID,
		TaskQueue: s.taskQueue,
	}
	_, err := s.client.ExecuteWorkflow(ctx, opts, ModerationWorkflow, ModerationInput{
		CommentID: c.ID,
		ArtworkID: c.ArtworkID,
	})
	if err != nil {
		return fmt.Errorf("start moderation: %w", err)
	}
	return nil
}
