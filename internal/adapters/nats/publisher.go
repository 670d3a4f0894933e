package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Subjects.
const (
	SubjectLikeToggles = "artmap.likes.toggle."
	SubjectFeedLikes   = "artmap.feed.likes."
	SubjectFeedComment = "artmap.feed.comments."
	SubjectFeedAll     = "artmap.feed.>"
)

// Publisher implements ports.EventPublisher using NATS JetStream for like
// toggles and core NATS for feed broadcasts.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStreams(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStreams(js nats.JetStreamContext) error {
	streams := []nats.StreamConfig{
		{
			Name:      "LIKE_TOGGLES",
			Subjects:  []string{SubjectLikeToggles + ">"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}
	return nil
}

func (p *Publisher) PublishLikeToggle(ctx context.Context, toggle *domain.LikeToggle) error {
	data, err := json.Marshal(toggle)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectLikeToggles+Token(toggle.ArtworkID), data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishLikeCount(ctx context.Context, count *domain.LikeCount) error {
	data, err := EncodeFeed(FeedLikes, map[string]any{
		"artwork_id": count.ArtworkID,
		"count":      count.Count,
		"popular":    count.Count > domain.PopularLikeThreshold,
	})
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectFeedLikes+Token(count.ArtworkID), data)
}

func (p *Publisher) PublishComment(ctx context.Context, c *domain.Comment) error {
	fields := map[string]any{
		"id":         c.ID,
		"artwork_id": c.ArtworkID,
		"author":     c.Author,
		"body":       c.Body,
		"created_at": c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.ReplyTo != nil {
		fields["reply_to"] = *c.ReplyTo
	}
	data, err := EncodeFeed(FeedComments, fields)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectFeedComment+Token(c.ArtworkID), data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
