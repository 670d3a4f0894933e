//go:build integration
// +build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/http"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/postgres"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/pkg/config"
)

// setupTestDB connects to the test database and returns a clean DB instance.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("artmap-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}

	db := &postgres.DB{Pool: pool}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}

	return db
}

// setupTestDeps creates dependencies with real DB and repos, no cache.
func setupTestDeps(t *testing.T, db *postgres.DB) *http.Dependencies {
	artworks := postgres.NewArtworkRepo(db)
	comments := postgres.NewCommentRepo(db)
	likes := postgres.NewLikeRepo(db)

	return &http.Dependencies{
		Artworks: usecases.NewArtworkService(artworks, nil),
		Likes:    usecases.NewLikeService(artworks, &mockLikedSet{}, likes, mockPublisher{}),
		Comments: usecases.NewCommentService(artworks, comments, &mockModerator{}),
		Sessions: usecases.NewSessionService(mockGeometry{}, testArea(), camera.DefaultConfig()),
		DB:       db,
	}
}

// seedTestArtwork inserts an artwork near the river survey area.
func seedTestArtwork(t *testing.T, db *postgres.DB, id, title string, lat, lon float64) {
	repo := postgres.NewArtworkRepo(db)
	a := &domain.Artwork{
		ID:         id,
		Title:      title,
		Author:     "テスト",
		HazardType: "flood",
		Location:   domain.GeoPoint{Lat: lat, Lon: lon},
		CreatedAt:  time.Now(),
	}
	if err := repo.Upsert(context.Background(), a); err != nil {
		t.Fatalf("seed artwork: %v", err)
	}
}

func TestGetArtwork_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	id := "test_integ_" + time.Now().Format("20060102150405")
	seedTestArtwork(t, db, id, "川の記憶", 35.54, 139.63)

	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/artworks/"+id, nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var a domain.Artwork
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if a.ID != id || a.Location.Lat < 35.5 {
		t.Errorf("unexpected artwork %+v", a)
	}
}

func TestNearbyArtworks_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	seedTestArtwork(t, db, "test_spatial_near", "坂道の花", 35.5401, 139.6301)
	seedTestArtwork(t, db, "test_spatial_far", "遠くの丘", 35.60, 139.70)

	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/artworks/nearby?lat=35.54&lon=139.63&radius=500", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var artworks []domain.Artwork
	if err := json.NewDecoder(resp.Body).Decode(&artworks); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	found := false
	for _, a := range artworks {
		if a.ID == "test_spatial_far" {
			t.Errorf("artwork outside the radius returned")
		}
		if a.ID == "test_spatial_near" {
			found = true
			if a.Distance == nil || *a.Distance > 500 {
				t.Errorf("unexpected distance %v", a.Distance)
			}
		}
	}
	if !found {
		t.Error("expected nearby artwork in results")
	}
}

func TestLikeCount_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	id := fmt.Sprintf("test_likes_%d", time.Now().UnixNano())
	seedTestArtwork(t, db, id, "水の道", 35.54, 139.63)

	deps := setupTestDeps(t, db)
	ctx := context.Background()
	toggle := &domain.LikeToggle{ArtworkID: id, DeviceID: "dev", Delta: 1, Time: time.Now()}
	if err := deps.Likes.Apply(ctx, toggle); err != nil {
		t.Fatalf("apply: %v", err)
	}

	app := setupApp(deps)
	resp, err := app.Test(httptest.NewRequest("GET", "/v1/artworks/"+id+"/likes", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	var res usecases.LikeResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Count != 1 {
		t.Errorf("expected 1 like, got %d", res.Count)
	}
}

func TestReady_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	defer db.Pool.Close()

	app := setupApp(setupTestDeps(t, db))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 with database reachable, got %d", resp.StatusCode)
	}
}
