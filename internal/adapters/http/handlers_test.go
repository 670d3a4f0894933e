package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	handler "github.com/Kkzzkk0611/WSsupportApp-202601/internal/adapters/http"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/usecases"
)

// ---- Mock repositories ----

type mockArtworkRepo struct {
	listFn       func(ctx context.Context) ([]domain.Artwork, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Artwork, error)
	findNearbyFn func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Artwork, error)
}

func (m *mockArtworkRepo) Upsert(ctx context.Context, a *domain.Artwork) error       { return nil }
func (m *mockArtworkRepo) UpsertBatch(ctx context.Context, a []domain.Artwork) error { return nil }
func (m *mockArtworkRepo) List(ctx context.Context) ([]domain.Artwork, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockArtworkRepo) GetByID(ctx context.Context, id string) (*domain.Artwork, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Artwork{ID: id, Title: "作品 " + id}, nil
}
func (m *mockArtworkRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Artwork, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}

type mockCommentRepo struct {
	listFn   func(ctx context.Context, artworkID string) ([]domain.Comment, error)
	deleteFn func(ctx context.Context, id, deviceID string) error
}

func (m *mockCommentRepo) Create(ctx context.Context, c *domain.Comment) error { return nil }
func (m *mockCommentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	return nil, domain.ErrNotFound
}
func (m *mockCommentRepo) ListVisible(ctx context.Context, artworkID string) ([]domain.Comment, error) {
	if m.listFn != nil {
		return m.listFn(ctx, artworkID)
	}
	return nil, nil
}
func (m *mockCommentRepo) SetStatus(ctx context.Context, id string, s domain.CommentStatus) error {
	return nil
}
func (m *mockCommentRepo) DeleteOwned(ctx context.Context, id, deviceID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, deviceID)
	}
	return nil
}

type mockLikeRepo struct {
	count int
}

func (m *mockLikeRepo) Adjust(ctx context.Context, id string, delta int) (int, error) {
	m.count += delta
	return m.count, nil
}
func (m *mockLikeRepo) Count(ctx context.Context, id string) (int, error) { return m.count, nil }

type mockLikedSet struct {
	liked map[string]bool
}

func (m *mockLikedSet) ToggleLiked(ctx context.Context, deviceID, artworkID string) (bool, error) {
	if m.liked == nil {
		m.liked = make(map[string]bool)
	}
	key := deviceID + "/" + artworkID
	m.liked[key] = !m.liked[key]
	return m.liked[key], nil
}
func (m *mockLikedSet) IsLiked(ctx context.Context, deviceID, artworkID string) (bool, error) {
	return m.liked[deviceID+"/"+artworkID], nil
}
func (m *mockLikedSet) Liked(ctx context.Context, deviceID string) ([]string, error) {
	var ids []string
	for k, v := range m.liked {
		if v && strings.HasPrefix(k, deviceID+"/") {
			ids = append(ids, strings.TrimPrefix(k, deviceID+"/"))
		}
	}
	return ids, nil
}

type mockPublisher struct{}

func (mockPublisher) PublishLikeToggle(ctx context.Context, t *domain.LikeToggle) error { return nil }
func (mockPublisher) PublishLikeCount(ctx context.Context, c *domain.LikeCount) error   { return nil }
func (mockPublisher) PublishComment(ctx context.Context, c *domain.Comment) error       { return nil }

type mockModerator struct {
	submitted []string
}

func (m *mockModerator) Submit(ctx context.Context, c *domain.Comment) error {
	m.submitted = append(m.submitted, c.ID)
	return nil
}

type mockGeometry struct{}

func (mockGeometry) Contains(area *domain.AllowedArea, p domain.MapPoint) (bool, error) {
	return true, nil
}
func (mockGeometry) Project(p domain.GeoPoint, sr domain.SpatialReference) (domain.MapPoint, error) {
	return domain.MapPoint{X: p.Lon, Y: p.Lat, SpatialReference: sr}, nil
}
func (mockGeometry) Unproject(p domain.MapPoint) (domain.GeoPoint, error) {
	return domain.GeoPoint{Lat: p.Y, Lon: p.X}, nil
}

type mockHost struct {
	mu      sync.Mutex
	cam     domain.Camera
	targets []domain.CameraTarget
}

func (m *mockHost) Camera() domain.Camera {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cam
}
func (m *mockHost) Center() domain.MapPoint {
	return domain.MapPoint{X: 139.63, Y: 35.54, SpatialReference: wgs84}
}
func (m *mockHost) SpatialReference() domain.SpatialReference { return wgs84 }
func (m *mockHost) AnimateTo(ctx context.Context, target domain.CameraTarget, opts domain.AnimateOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, target)
	return nil
}

var wgs84 = domain.SpatialReference{WKID: domain.WKIDWGS84}

func testArea() *domain.AllowedArea {
	return &domain.AllowedArea{
		SpatialReference: wgs84,
		Ring: []domain.MapPoint{
			{X: 139.611, Y: 35.5265, SpatialReference: wgs84},
			{X: 139.611, Y: 35.555, SpatialReference: wgs84},
			{X: 139.648, Y: 35.555, SpatialReference: wgs84},
			{X: 139.648, Y: 35.5265, SpatialReference: wgs84},
			{X: 139.611, Y: 35.5265, SpatialReference: wgs84},
		},
	}
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	artworks := &mockArtworkRepo{}
	d := &handler.Dependencies{
		Artworks: usecases.NewArtworkService(artworks, nil),
		Likes:    usecases.NewLikeService(artworks, &mockLikedSet{}, &mockLikeRepo{}, mockPublisher{}),
		Comments: usecases.NewCommentService(artworks, &mockCommentRepo{}, &mockModerator{}),
		Sessions: usecases.NewSessionService(mockGeometry{}, testArea(), camera.DefaultConfig()),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func jsonRequest(method, target string, body any) *nethttp.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func day(n int) time.Time {
	return time.Date(2025, 6, n, 12, 0, 0, 0, time.UTC)
}

// ---- Artwork handler tests ----

func TestListArtworks_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Artworks = usecases.NewArtworkService(&mockArtworkRepo{
			listFn: func(ctx context.Context) ([]domain.Artwork, error) {
				return []domain.Artwork{
					{ID: "1", Title: "川の記憶", CreatedAt: day(1)},
					{ID: "2", Title: "逃げよう", CreatedAt: day(2)},
					{ID: "3", Title: "坂道の花", CreatedAt: day(3)},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/artworks", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Artwork `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 2 {
		t.Errorf("expected total 2 after hiding keywords, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 || result.Data[0].ID != "3" || !result.Data[0].IsNew {
		t.Errorf("unexpected artworks %+v", result.Data)
	}
}

func TestListArtworks_Pagination(t *testing.T) {
	artworks := make([]domain.Artwork, 5)
	for i := range artworks {
		artworks[i] = domain.Artwork{ID: fmt.Sprintf("a%d", i), Title: fmt.Sprintf("作品 %d", i), CreatedAt: day(i + 1)}
	}

	deps := makeDeps(func(d *handler.Dependencies) {
		d.Artworks = usecases.NewArtworkService(&mockArtworkRepo{
			listFn: func(ctx context.Context) ([]domain.Artwork, error) { return artworks, nil },
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/artworks?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Artwork `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 artworks in page, got %d", len(result.Data))
	}
	if result.Pagination.Offset != 2 {
		t.Errorf("expected offset 2, got %d", result.Pagination.Offset)
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, `rel="next"`) || !strings.Contains(link, `rel="prev"`) {
		t.Errorf("expected next and prev links, got %s", link)
	}
}

func TestGetArtwork_NotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Artworks = usecases.NewArtworkService(&mockArtworkRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Artwork, error) {
				return nil, domain.ErrNotFound
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/artworks/missing", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found code, got %q", apiErr.Code)
	}
}

func TestGetArtwork_RepositoryFailure(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Artworks = usecases.NewArtworkService(&mockArtworkRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Artwork, error) {
				return nil, errors.New("connection reset")
			},
		}, nil)
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/artworks/1", nil), -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body := string(readBody(t, resp.Body)); strings.Contains(body, "connection reset") {
		t.Errorf("internal error detail leaked: %s", body)
	}
}

func TestNearbyArtworks_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/artworks/nearby", nil), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNearbyArtworks_CacheControlHeader(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Artworks = usecases.NewArtworkService(&mockArtworkRepo{
			findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Artwork, error) {
				return []domain.Artwork{}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/artworks/nearby?lat=35.54&lon=139.63", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=60" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}
}

// ---- Like handler tests ----

func TestToggleLike(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(jsonRequest("POST", "/v1/artworks/a1/like", map[string]string{"device_id": "dev-1"}), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	var res usecases.LikeResult
	json.NewDecoder(resp.Body).Decode(&res)
	if !res.Liked || res.Count != 1 {
		t.Errorf("unexpected like result %+v", res)
	}
}

func TestToggleLike_MissingDevice(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(jsonRequest("POST", "/v1/artworks/a1/like", map[string]string{}), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Comment handler tests ----

func TestCreateComment_Accepted(t *testing.T) {
	mod := &mockModerator{}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Comments = usecases.NewCommentService(&mockArtworkRepo{}, &mockCommentRepo{}, mod)
	})
	app := setupApp(deps)

	body := map[string]any{"device_id": "dev-1", "author": "ゆき", "body": "すてき", "reply_to": ""}
	resp, _ := app.Test(jsonRequest("POST", "/v1/artworks/a1/comments", body), -1)
	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var c domain.Comment
	json.NewDecoder(resp.Body).Decode(&c)
	if c.Status != domain.CommentPending || c.ReplyTo != nil {
		t.Errorf("unexpected comment %+v", c)
	}
	if len(mod.submitted) != 1 {
		t.Errorf("expected one moderation submission, got %d", len(mod.submitted))
	}
}

func TestCreateComment_EmptyBody(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(jsonRequest("POST", "/v1/artworks/a1/comments", map[string]string{"device_id": "d", "body": " "}), -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteComment(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Comments = usecases.NewCommentService(&mockArtworkRepo{}, &mockCommentRepo{
			deleteFn: func(ctx context.Context, id, deviceID string) error {
				if deviceID != "owner" {
					return domain.ErrNotFound
				}
				return nil
			},
		}, &mockModerator{})
	})
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("DELETE", "/v1/comments/c1?device_id=owner", nil), -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("DELETE", "/v1/comments/c1?device_id=someone", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404 for another device, got %d", resp.StatusCode)
	}
}

// ---- Session handler tests ----

func TestSessionEndpoints(t *testing.T) {
	deps := makeDeps()
	host := &mockHost{cam: camera.DefaultConfig().InitialCamera}
	if _, err := deps.Sessions.Open(context.Background(), "s1", host); err != nil {
		t.Fatalf("open session: %v", err)
	}
	defer deps.Sessions.CloseAll()
	app := setupApp(deps)

	resp, _ := app.Test(jsonRequest("POST", "/v1/sessions/s1/tilt", map[string]string{"direction": "up"}), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("tilt: expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	var tilt struct {
		Tilt    float64 `json:"tilt"`
		TopDown bool    `json:"top_down"`
	}
	json.NewDecoder(resp.Body).Decode(&tilt)
	if tilt.Tilt != 45 || tilt.TopDown {
		t.Errorf("unexpected tilt response %+v", tilt)
	}

	resp, _ = app.Test(jsonRequest("POST", "/v1/sessions/s1/tilt", map[string]string{"direction": "sideways"}), -1)
	if resp.StatusCode != 400 {
		t.Errorf("invalid direction: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/sessions/s1", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("status: expected 200, got %d", resp.StatusCode)
	}
	var st camera.Status
	json.NewDecoder(resp.Body).Decode(&st)
	if st.AllowedTilt != 45 {
		t.Errorf("expected allowed tilt 45, got %v", st.AllowedTilt)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		t.Errorf("live camera state must not carry an ETag, got %q", etag)
	}

	resp, _ = app.Test(jsonRequest("POST", "/v1/sessions/s1/focus", map[string]float64{"longitude": 139.63, "latitude": 35.54}), -1)
	if resp.StatusCode != 202 {
		t.Errorf("focus: expected 202, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(jsonRequest("POST", "/v1/sessions/s1/focus", map[string]float64{"longitude": 139.63}), -1)
	if resp.StatusCode != 400 {
		t.Errorf("focus without latitude: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("POST", "/v1/sessions/s1/reset", nil), -1)
	if resp.StatusCode != 202 {
		t.Errorf("reset: expected 202, got %d", resp.StatusCode)
	}
}

func TestSessionStatus_Unknown(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/nope", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSessionWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/sessions/ws", nil), -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func TestGraphQL_Artworks(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Artworks = usecases.NewArtworkService(&mockArtworkRepo{
			listFn: func(ctx context.Context) ([]domain.Artwork, error) {
				return []domain.Artwork{{ID: "1", Title: "川の記憶", Location: domain.GeoPoint{Lat: 35.54, Lon: 139.63}}}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := jsonRequest("POST", "/graphql", map[string]string{"query": "{ artworks { id title is_new location { lat } } }"})
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Artworks []struct {
				ID       string `json:"id"`
				Title    string `json:"title"`
				IsNew    bool   `json:"is_new"`
				Location struct {
					Lat float64 `json:"lat"`
				} `json:"location"`
			} `json:"artworks"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if len(result.Data.Artworks) != 1 || !result.Data.Artworks[0].IsNew || result.Data.Artworks[0].Location.Lat != 35.54 {
		t.Errorf("unexpected artworks %+v", result.Data.Artworks)
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
	if result["camera_sessions"] != float64(0) {
		t.Errorf("expected 0 camera sessions, got %v", result["camera_sessions"])
	}
}

func TestReady_NoDB(t *testing.T) {
	deps := makeDeps()
	// DB, NATS, Cache are nil → should report not ready
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

// ---- X-API-Version header ----

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	v := resp.Header.Get("X-API-Version")
	if v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestAccessLogMiddleware_SessionRoute(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(handler.AccessLogMiddleware(log))
	app.Get("/v1/sessions/:id", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/v1/artworks/:id", func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/sessions/s-42", nil), -1)
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %v %v", resp, err)
	}
	app.Test(httptest.NewRequest("GET", "/v1/artworks/a-9", nil), -1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 access lines, got %d: %s", len(lines), buf.String())
	}

	var session, artwork map[string]any
	json.Unmarshal([]byte(lines[0]), &session)
	json.Unmarshal([]byte(lines[1]), &artwork)

	if session["route"] != "/v1/sessions/:id" || session["session"] != "s-42" || session["camera"] != true {
		t.Errorf("unexpected session line %v", session)
	}
	if session["level"] != "INFO" {
		t.Errorf("expected INFO for 200, got %v", session["level"])
	}
	if artwork["artwork_id"] != "a-9" || artwork["status"] != float64(404) || artwork["level"] != "WARN" {
		t.Errorf("unexpected artwork line %v", artwork)
	}
	if _, ok := artwork["session"]; ok {
		t.Error("artwork route must not carry a session")
	}
}

func TestListArtworks_LimitClampedAndQueryKept(t *testing.T) {
	artworks := make([]domain.Artwork, 120)
	for i := range artworks {
		artworks[i] = domain.Artwork{ID: fmt.Sprintf("a%d", i), Title: fmt.Sprintf("作品 %d", i), CreatedAt: day(i + 1)}
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Artworks = usecases.NewArtworkService(&mockArtworkRepo{
			listFn: func(ctx context.Context) ([]domain.Artwork, error) { return artworks, nil },
		}, nil)
	})
	app := setupApp(deps)

	var result struct {
		Data       []domain.Artwork `json:"data"`
		Pagination struct {
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/artworks", nil), -1)
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Limit != 50 || len(result.Data) != 50 {
		t.Errorf("expected default page of 50, got limit %d with %d items", result.Pagination.Limit, len(result.Data))
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/artworks?limit=500&device_id=dev-1", nil), -1)
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Limit != 100 || len(result.Data) != 100 || result.Pagination.Total != 120 {
		t.Errorf("expected limit capped at 100, got %+v with %d items", result.Pagination, len(result.Data))
	}
	link := resp.Header.Get("Link")
	if !strings.Contains(link, `offset=100&limit=100&device_id=dev-1>; rel="next"`) {
		t.Errorf("expected next link keeping device_id, got %s", link)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/artworks?offset=500", nil), -1)
	body := readBody(t, resp.Body)
	if !strings.Contains(string(body), `"data":[]`) {
		t.Errorf("expected empty page past the end, got %s", body)
	}
}

func TestETag_NotModified(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/artworks/7", nil), -1)
	etag := resp.Header.Get("ETag")
	if resp.StatusCode != 200 || !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected 200 with weak ETag, got %d %q", resp.StatusCode, etag)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=30" {
		t.Errorf("expected artwork Cache-Control, got %q", cc)
	}

	req := httptest.NewRequest("GET", "/v1/artworks/7", nil)
	req.Header.Set("If-None-Match", `"other", `+etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304 for matching If-None-Match, got %d", resp.StatusCode)
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(requestid.New())
	app.Use(handler.RequestLoggerMiddleware(log))
	app.Get("/v1/artworks/:id/likes", func(c *fiber.Ctx) error {
		handler.LoggerFromCtx(c.UserContext()).Info("like status")
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/v1/artworks/a1/likes?device_id=dev-7", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-123")
	if _, err := app.Test(req, -1); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "request_id=req-123") || !strings.Contains(out, "device_id=dev-7") {
		t.Errorf("expected request and device ids on the request logger, got %q", out)
	}
	if handler.LoggerFromCtx(context.Background()) != slog.Default() {
		t.Error("expected default logger outside a request")
	}
}
