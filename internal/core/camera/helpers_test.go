package camera

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// --- Mock CameraHost ---

type animateCall struct {
	target domain.CameraTarget
	opts   domain.AnimateOptions
}

type mockHost struct {
	cam       domain.Camera
	center    domain.MapPoint
	sr        domain.SpatialReference
	animateFn func(ctx context.Context, target domain.CameraTarget, opts domain.AnimateOptions) error
	calls     []animateCall
}

func (m *mockHost) Camera() domain.Camera                     { return m.cam }
func (m *mockHost) Center() domain.MapPoint                   { return m.center }
func (m *mockHost) SpatialReference() domain.SpatialReference { return m.sr }

func (m *mockHost) AnimateTo(ctx context.Context, target domain.CameraTarget, opts domain.AnimateOptions) error {
	m.calls = append(m.calls, animateCall{target: target, opts: opts})
	if m.animateFn != nil {
		return m.animateFn(ctx, target, opts)
	}
	return nil
}

// --- Mock GeometryEngine ---

type mockGeometry struct {
	containsFn func(area *domain.AllowedArea, p domain.MapPoint) (bool, error)
}

func (m *mockGeometry) Contains(area *domain.AllowedArea, p domain.MapPoint) (bool, error) {
	if m.containsFn != nil {
		return m.containsFn(area, p)
	}
	return true, nil
}

func (m *mockGeometry) Project(p domain.GeoPoint, sr domain.SpatialReference) (domain.MapPoint, error) {
	return domain.MapPoint{X: p.Lon, Y: p.Lat, SpatialReference: sr}, nil
}

func (m *mockGeometry) Unproject(p domain.MapPoint) (domain.GeoPoint, error) {
	return domain.GeoPoint{Lat: p.Y, Lon: p.X}, nil
}

// --- Mock Observer ---

type countingObserver struct {
	intents     map[domain.Intent]int
	corrections map[CorrectionKind]int
	outcomes    map[Outcome]int
	dropped     map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		intents:     map[domain.Intent]int{},
		corrections: map[CorrectionKind]int{},
		outcomes:    map[Outcome]int{},
		dropped:     map[string]int{},
	}
}

func (o *countingObserver) GestureClassified(i domain.Intent)             { o.intents[i]++ }
func (o *countingObserver) CorrectionIssued(k CorrectionKind)             { o.corrections[k]++ }
func (o *countingObserver) TransitionSettled(_ CorrectionKind, r Outcome) { o.outcomes[r]++ }
func (o *countingObserver) NotificationDropped(w string)                  { o.dropped[w]++ }

// harness wires the components by hand. Spawned senders wait until the
// test runs them, and loop posts are queued for the test goroutine, so every
// interleaving is chosen explicitly.
type harness struct {
	t    *testing.T
	cfg  Config
	host *mockHost
	geo  *mockGeometry
	obs  *countingObserver
	clk  *clock.Mock

	mu      sync.Mutex
	posted  []func()
	spawned []func()

	guard    *ReentrancyGuard
	tilt     *TiltBaseline
	gestures *GestureClassifier
	coord    *AnimationCoordinator
	enforcer *CameraConstraintEnforcer
	bounds   *AreaBoundsGuard
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := DefaultConfig()
	h := &harness{
		t:   t,
		cfg: cfg,
		host: &mockHost{
			cam:    cfg.InitialCamera,
			center: domain.MapPoint{X: 139.63, Y: 35.54, SpatialReference: domain.SpatialReference{WKID: domain.WKIDWGS84}},
			sr:     domain.SpatialReference{WKID: domain.WKIDWGS84},
		},
		geo: &mockGeometry{},
		obs: newCountingObserver(),
		clk: clock.NewMock(),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sched := scheduler{
		clock: h.clk,
		post: func(fn func()) bool {
			h.mu.Lock()
			h.posted = append(h.posted, fn)
			h.mu.Unlock()
			return true
		},
		spawn: func(fn func()) { h.spawned = append(h.spawned, fn) },
	}

	h.guard = &ReentrancyGuard{}
	h.tilt = NewTiltBaseline(cfg.InitialCamera.Tilt, cfg.MinTilt, cfg.MaxTilt, cfg.TiltStep)
	h.gestures = NewGestureClassifier(cfg.PinchDeadband, func() PinchLock {
		return PinchLock{Center: h.host.center, Heading: h.host.cam.Heading, Tilt: h.host.cam.Tilt}
	})
	h.coord = newCoordinator(h.host, h.guard, sched, h.obs, log, cfg.SettleTimeout)
	h.enforcer = newEnforcer(cfg, h.gestures, h.tilt, h.guard, h.coord, h.obs, log)
	h.bounds = newBoundsGuard(cfg, testArea(), h.geo, h.guard, h.coord, h.obs, log)
	return h
}

// runSpawned runs the i-th spawned sender, which delivers every queued request.
func (h *harness) runSpawned(i int) {
	h.t.Helper()
	if i >= len(h.spawned) {
		h.t.Fatalf("no spawned call %d (have %d)", i, len(h.spawned))
	}
	fn := h.spawned[i]
	h.spawned[i] = func() {}
	fn()
}

// drain runs every queued loop continuation.
func (h *harness) drain() {
	for {
		h.mu.Lock()
		if len(h.posted) == 0 {
			h.mu.Unlock()
			return
		}
		fn := h.posted[0]
		h.posted = h.posted[1:]
		h.mu.Unlock()
		fn()
	}
}

// advance moves the clock and runs whatever the fired timers posted.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	h.clk.Add(d)
	h.drain()
}

// awaitRelease advances past grace and waits for the guard to open.
func (h *harness) awaitRelease(grace time.Duration) {
	h.t.Helper()
	h.clk.Add(grace)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.drain()
		if !h.guard.Locked() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	h.t.Fatalf("guard still locked %v after settle", grace)
}

func testArea() *domain.AllowedArea {
	sr := domain.SpatialReference{WKID: domain.WKIDWGS84}
	return &domain.AllowedArea{
		SpatialReference: sr,
		Ring: []domain.MapPoint{
			{X: 139.611, Y: 35.5265, SpatialReference: sr},
			{X: 139.611, Y: 35.555, SpatialReference: sr},
			{X: 139.648, Y: 35.555, SpatialReference: sr},
			{X: 139.648, Y: 35.5265, SpatialReference: sr},
			{X: 139.611, Y: 35.5265, SpatialReference: sr},
		},
	}
}
