package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/postgres"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/survey"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/valkey"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/config"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/logging"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/metrics"
)

// ingestor loads the survey layer's GeoJSON export (a file path or URL) into
// the artworks table.
func main() {
	cfg, err := config.Load("artmap-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("artmap-ingestor", cfg.Log.Level, cfg.Log.Format)

	source := "artworks.geojson"
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	data, err := fetch(ctx, source)
	if err != nil {
		log.Fatalf("fetch %s: %v", source, err)
	}

	artworks, skipped, err := survey.ParseFeatureCollection(data)
	if err != nil {
		log.Fatalf("parse: %v", err)
	}
	slog.Info("survey export parsed", "source", source, "features", len(artworks), "skipped", skipped)

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	svc := usecases.NewArtworkService(postgres.NewArtworkRepo(db), nil)

	// The list cache is optional here; without it the API serves stale data
	// until the entry expires.
	if cache, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable, list cache not invalidated", "error", err)
	} else {
		defer cache.Close()
		svc = usecases.NewArtworkService(postgres.NewArtworkRepo(db), cache)
	}

	n, err := svc.Import(ctx, artworks)
	if err != nil {
		log.Fatalf("import: %v", err)
	}
	metrics.ArtworksImported.Add(float64(n))

	slog.Info("ingestion complete", "imported", n)
}

func fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, source)
	}
	return io.ReadAll(resp.Body)
}
