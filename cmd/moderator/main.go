package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/nats"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/postgres"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/config"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/logging"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/workflows"
)

func main() {
	cfg, err := config.Load("artmap-moderator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("artmap-moderator", cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ModerationWorkflow)
	w.RegisterActivity(&workflows.ModerationActivities{
		Comments:  postgres.NewCommentRepo(db),
		Publisher: publisher,
	})

	slog.Info("moderation worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
