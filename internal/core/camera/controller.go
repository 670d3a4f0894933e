// Package camera keeps a host-owned 3D map camera inside a fixed operating
// envelope: bounded altitude, fixed heading, a user-adjustable tilt baseline
// and a polygonal area for the view center.
//
// All state lives on a single loop goroutine. Public methods post work to the
// loop and, where they return a result, wait for it. Host transitions are
// sent in order from a separate goroutine and report back through the loop.
package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
)

var (
	// ErrClosed is returned once the controller has stopped.
	ErrClosed = errors.New("camera controller closed")
	// ErrInvalidDirection is returned for an unknown tilt direction.
	ErrInvalidDirection = errors.New("invalid tilt direction")
)

const defaultQueueSize = 256

// Blocked keyboard controls: rotation and orbit keys of the host.
var blockedKeys = map[string]struct{}{
	"ArrowLeft":  {},
	"ArrowRight": {},
	"a":          {},
	"d":          {},
	"q":          {},
	"e":          {},
}

// Mouse button that orbits the host camera.
const orbitButton = 2

// Controller enforces the camera envelope for one host.
type Controller struct {
	host  ports.CameraHost
	cfg   Config
	log   *slog.Logger
	obs   Observer
	clock clock.Clock

	queueSize int
	loop      *loop

	guard    *ReentrancyGuard
	gestures *GestureClassifier
	tilt     *TiltBaseline
	coord    *AnimationCoordinator
	enforcer *CameraConstraintEnforcer
	bounds   *AreaBoundsGuard

	cancel    context.CancelFunc
	startOnce sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithObserver sets the instrumentation sink.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.obs = o }
}

// WithClock sets the clock used for grace delays.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithQueueSize sets the loop inbox capacity.
func WithQueueSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// New builds a controller for host. area must be expressed in the host's
// spatial reference.
func New(host ports.CameraHost, geo ports.GeometryEngine, area *domain.AllowedArea, cfg Config, opts ...Option) (*Controller, error) {
	if host == nil || geo == nil {
		return nil, errors.New("camera: host and geometry engine are required")
	}
	if area == nil || len(area.Ring) < 4 {
		return nil, errors.New("camera: allowed area needs a closed ring of at least 4 points")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hostSR := host.SpatialReference(); hostSR != area.SpatialReference {
		return nil, fmt.Errorf("camera: host wkid %d, area wkid %d: %w",
			hostSR.WKID, area.SpatialReference.WKID, domain.ErrSpatialReferenceMismatch)
	}

	c := &Controller{
		host:      host,
		cfg:       cfg,
		log:       slog.Default(),
		obs:       nopObserver{},
		clock:     clock.New(),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "camera")
	c.loop = newLoop(c.queueSize)

	sched := scheduler{
		clock: c.clock,
		post:  c.loop.post,
		spawn: func(fn func()) { go fn() },
	}

	c.guard = &ReentrancyGuard{}
	c.tilt = NewTiltBaseline(cfg.InitialCamera.Tilt, cfg.MinTilt, cfg.MaxTilt, cfg.TiltStep)
	c.gestures = NewGestureClassifier(cfg.PinchDeadband, c.snapshot)
	c.coord = newCoordinator(host, c.guard, sched, c.obs, c.log, cfg.SettleTimeout)
	c.enforcer = newEnforcer(cfg, c.gestures, c.tilt, c.guard, c.coord, c.obs, c.log)
	c.bounds = newBoundsGuard(cfg, area, geo, c.guard, c.coord, c.obs, c.log)

	return c, nil
}

// Start runs the loop until ctx is done or Close is called.
func (c *Controller) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx, c.cancel = context.WithCancel(ctx)
		c.coord.ctx = ctx
		go c.loop.run(ctx)
		c.log.Debug("camera controller started")
	})
}

// Close stops the loop and cancels in-flight transitions.
func (c *Controller) Close() {
	c.startOnce.Do(func() {})
	if c.cancel != nil {
		c.cancel()
	}
	c.loop.stop()
}

// Done is closed once the controller has stopped.
func (c *Controller) Done() <-chan struct{} {
	return c.loop.done
}

// HandleTouch classifies a touch event. Blocked decisions must be suppressed
// by the input layer.
func (c *Controller) HandleTouch(ctx context.Context, ev domain.TouchEvent) (domain.Decision, error) {
	var d domain.Decision
	err := c.call(ctx, func() {
		d = c.gestures.Classify(ev)
		c.obs.GestureClassified(d.Intent)
	})
	if err != nil {
		return domain.Decision{}, err
	}
	return d, nil
}

// HandleNativeGesture always blocks platform pinch/rotate gestures. Pinch zoom
// is driven by raw touch events instead.
func (c *Controller) HandleNativeGesture(ev domain.NativeGestureEvent) domain.Decision {
	c.recordBlocked()
	return domain.DecisionBlocked
}

// HandleKey blocks the host's rotate keys.
func (c *Controller) HandleKey(key string) domain.Decision {
	if _, ok := blockedKeys[key]; ok {
		c.recordBlocked()
		return domain.DecisionBlocked
	}
	return domain.DecisionPan
}

// HandleDrag blocks orbit drags.
func (c *Controller) HandleDrag(button int) domain.Decision {
	if button == orbitButton {
		c.recordBlocked()
		return domain.DecisionBlocked
	}
	return domain.DecisionPan
}

// recordBlocked reports a blocked input to the observer from the loop.
func (c *Controller) recordBlocked() {
	c.loop.post(func() { c.obs.GestureClassified(domain.IntentBlocked) })
}

// CameraChanged notifies the enforcer of a new camera. It does not wait.
func (c *Controller) CameraChanged(cam domain.Camera) {
	if !c.loop.post(func() { c.enforcer.OnCameraChange(cam) }) {
		c.log.Debug("camera notification after close")
	}
}

// CenterChanged notifies the bounds guard of a new view center. It does not wait.
func (c *Controller) CenterChanged(center domain.MapPoint) {
	if !c.loop.post(func() { c.bounds.OnCenterChange(center, c.host.Camera()) }) {
		c.log.Debug("center notification after close")
	}
}

// AdjustTilt moves the tilt baseline one step and animates the camera to it.
// It returns the new baseline without waiting for the transition.
func (c *Controller) AdjustTilt(ctx context.Context, dir domain.TiltDirection) (float64, error) {
	if !dir.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	var tilt float64
	err := c.call(ctx, func() {
		tilt = c.tilt.Adjust(dir)
		target := domain.TargetFromCamera(c.host.Camera())
		next := tilt
		target.Tilt = &next
		c.coord.Run(target, domain.Animated(c.cfg.TiltTransition, domain.EaseOutCubic), c.cfg.TiltGrace, CorrectionTilt)
	})
	if err != nil {
		return 0, err
	}
	return tilt, nil
}

// FocusOn centers the view on p at the focus altitude, keeping the fixed
// heading and the current tilt baseline.
func (c *Controller) FocusOn(ctx context.Context, p domain.MapPoint) error {
	if sr := c.host.SpatialReference(); p.SpatialReference != sr {
		return fmt.Errorf("camera: focus point wkid %d, host wkid %d: %w",
			p.SpatialReference.WKID, sr.WKID, domain.ErrSpatialReferenceMismatch)
	}

	return c.call(ctx, func() {
		center := p
		pos := domain.Position{Altitude: c.cfg.FocusAltitude}
		heading, tilt := c.cfg.FixedHeading, c.tilt.Get()
		target := domain.CameraTarget{Center: &center, Position: &pos, Heading: &heading, Tilt: &tilt}
		c.coord.Run(target, domain.Animated(c.cfg.FocusTransition, domain.EaseOutQuart), c.cfg.FocusGrace, CorrectionFocus)
	})
}

// ResetView returns the camera to the home view.
func (c *Controller) ResetView(ctx context.Context) error {
	return c.call(ctx, func() {
		c.coord.Run(domain.TargetFromCamera(c.cfg.InitialCamera),
			domain.Animated(c.cfg.ReturnTransition, domain.EaseOutExpo), c.cfg.ReturnGrace, CorrectionReset)
	})
}

// Status is a point-in-time view of controller state.
type Status struct {
	Phase       string         `json:"phase"`
	Fingers     int            `json:"fingers"`
	Lock        *PinchLock     `json:"pinch_lock,omitempty"`
	AllowedTilt float64        `json:"allowed_tilt"`
	TopDown     bool           `json:"top_down"`
	Guard       string         `json:"guard"`
	GuardUntil  *time.Time     `json:"guard_until,omitempty"`
	LastValid   *domain.Camera `json:"last_valid_camera,omitempty"`
	Camera      domain.Camera  `json:"camera"`
}

// Status returns the controller state once every previously posted event has
// been processed.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.call(ctx, func() {
		g := c.gestures.State()
		st = Status{
			Phase:       g.Phase.String(),
			Fingers:     g.Fingers,
			Lock:        g.Lock,
			AllowedTilt: c.tilt.Get(),
			TopDown:     c.tilt.TopDown(),
			Guard:       c.guard.State().String(),
			LastValid:   c.bounds.LastValid(),
			Camera:      c.host.Camera(),
		}
		if until := c.guard.Until(); !until.IsZero() {
			st.GuardUntil = &until
		}
	})
	if err != nil {
		return Status{}, err
	}
	return st, nil
}

// call runs fn on the loop and waits for it.
func (c *Controller) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !c.loop.post(func() {
		fn()
		close(done)
	}) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.loop.done:
		return ErrClosed
	}
}

// snapshot captures the pinch lock from the live camera.
func (c *Controller) snapshot() PinchLock {
	cam := c.host.Camera()
	return PinchLock{
		Center:  c.host.Center(),
		Heading: cam.Heading,
		Tilt:    cam.Tilt,
	}
}
