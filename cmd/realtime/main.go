package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/nats"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/postgres"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/valkey"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/config"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/logging"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/metrics"
)

// realtime consumes like toggles from JetStream, persists the totals and
// broadcasts them on the live feed.
func main() {
	cfg, err := config.Load("artmap-realtime")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("artmap-realtime", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	artworkRepo := postgres.NewArtworkRepo(db)
	likes := usecases.NewLikeService(artworkRepo, cache, postgres.NewLikeRepo(db), publisher)

	if err := subscriber.SubscribeLikeToggles(ctx, likes.Apply); err != nil {
		log.Fatalf("subscribe like toggles: %v", err)
	}
	slog.Info("like counter started", "stream", "LIKE_TOGGLES")

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Stat())
		case sig := <-quit:
			slog.Info("shutting down like counter", "signal", sig.String())
			cancel()
			return
		}
	}
}
