package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/geometry"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/http"
	natsadapter "github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/nats"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/postgres"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/valkey"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/config"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/logging"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/metrics"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/telemetry"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/workflows"
)

func main() {
	cfg, err := config.Load("artmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	appLog := logging.Setup("artmap-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache and liked sets
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer publisher.Close()

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Drain()
	}

	// Temporal, for comment moderation
	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer tc.Close()

	// Camera envelope
	engine := geometry.NewEngine()
	area, err := loadArea(engine, cfg.Camera)
	if err != nil {
		log.Fatalf("camera area: %v", err)
	}

	// Repos
	artworkRepo := postgres.NewArtworkRepo(db)
	commentRepo := postgres.NewCommentRepo(db)
	likeRepo := postgres.NewLikeRepo(db)

	deps := &http.Dependencies{
		Artworks: usecases.NewArtworkService(artworkRepo, cache),
		Likes:    usecases.NewLikeService(artworkRepo, cache, likeRepo, publisher, usecases.WithLikeLogger(appLog)),
		Comments: usecases.NewCommentService(artworkRepo, commentRepo, workflows.NewSubmitter(tc, cfg.Temporal.TaskQueue)),
		Sessions: usecases.NewSessionService(engine, area, cfg.Camera.Controller(),
			camera.WithObserver(metrics.CameraObserver{}),
			camera.WithLogger(appLog),
		),
		NATS:  natsConn,
		DB:    db,
		Cache: cache,
	}

	// Pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "ArtMap API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "wkid", area.SpatialReference.WKID)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Stop camera controllers before their sockets go away
	deps.Sessions.CloseAll()

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// loadArea projects the configured allowed area into the view's spatial
// reference. A GeoJSON area_file takes precedence over the inline ring.
func loadArea(engine *geometry.Engine, cc config.CameraConfig) (*domain.AllowedArea, error) {
	ring := cc.Ring()
	if cc.AreaFile != "" {
		data, err := os.ReadFile(cc.AreaFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", cc.AreaFile, err)
		}
		if ring, err = geometry.ParseRing(data); err != nil {
			return nil, err
		}
	}
	return engine.Area(ring, cc.SpatialReference())
}
