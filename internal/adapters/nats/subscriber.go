package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeLikeToggles consumes toggles durably. A toggle is redelivered up
// to three times when handler fails. Malformed payloads and toggles the
// handler rejects as invalid input are terminated.
func (s *Subscriber) SubscribeLikeToggles(ctx context.Context, handler func(ctx context.Context, toggle *domain.LikeToggle) error) error {
	sub, err := s.js.Subscribe(SubjectLikeToggles+">", func(msg *nats.Msg) {
		var toggle domain.LikeToggle
		if err := json.Unmarshal(msg.Data, &toggle); err != nil {
			slog.Warn("malformed like toggle", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &toggle); err != nil {
			slog.Warn("like toggle failed", "artwork", toggle.ArtworkID, "error", err)
			if errors.Is(err, domain.ErrInvalidInput) {
				_ = msg.Term()
				return
			}
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("like-counter"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
