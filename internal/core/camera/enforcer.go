package camera

import (
	"log/slog"
	"math"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Envelope is the constraint an enforcer holds the camera to.
type Envelope struct {
	MinAltitude float64
	MaxAltitude float64
	Heading     float64
	Tilt        float64
	Tolerance   float64
}

// ClampAltitude bounds z to the envelope.
func (e Envelope) ClampAltitude(z float64) float64 {
	return clamp(z, e.MinAltitude, e.MaxAltitude)
}

// Constrain returns the nearest camera inside the envelope and whether it
// differs from cur by more than host noise. Heading and tilt are snapped to
// the envelope together whenever a correction is needed.
func Constrain(cur domain.Camera, env Envelope) (domain.Camera, bool) {
	next := cur
	next.Position.Altitude = env.ClampAltitude(cur.Position.Altitude)

	changed := next.Position.Altitude != cur.Position.Altitude ||
		angleDelta(cur.Heading, env.Heading) > env.Tolerance ||
		math.Abs(cur.Tilt-env.Tilt) > env.Tolerance
	if !changed {
		return cur, false
	}

	next.Heading = env.Heading
	next.Tilt = env.Tilt
	return next, true
}

// angleDelta is the unsigned smallest difference between two headings.
func angleDelta(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// CameraConstraintEnforcer reacts to camera change notifications by issuing
// an instant correction whenever the camera leaves the envelope.
type CameraConstraintEnforcer struct {
	cfg      Config
	gestures *GestureClassifier
	tilt     *TiltBaseline
	guard    *ReentrancyGuard
	coord    *AnimationCoordinator
	obs      Observer
	log      *slog.Logger
}

func newEnforcer(cfg Config, gestures *GestureClassifier, tilt *TiltBaseline, guard *ReentrancyGuard, coord *AnimationCoordinator, obs Observer, log *slog.Logger) *CameraConstraintEnforcer {
	return &CameraConstraintEnforcer{
		cfg:      cfg,
		gestures: gestures,
		tilt:     tilt,
		guard:    guard,
		coord:    coord,
		obs:      obs,
		log:      log,
	}
}

// Envelope returns the constraint for the given gesture state.
func (e *CameraConstraintEnforcer) Envelope(state GestureState) Envelope {
	env := Envelope{
		MinAltitude: e.cfg.MinAltitude,
		MaxAltitude: e.cfg.MaxAltitude,
		Heading:     e.cfg.FixedHeading,
		Tilt:        e.tilt.Get(),
		Tolerance:   e.cfg.Tolerance,
	}
	if state.Pinching() {
		env.Heading = state.Lock.Heading
		env.Tilt = state.Lock.Tilt
	}
	return env
}

// OnCameraChange handles one camera notification. It reports whether a
// correction was issued.
func (e *CameraConstraintEnforcer) OnCameraChange(cur domain.Camera) bool {
	if e.guard.Locked() {
		e.obs.NotificationDropped(WatcherCamera)
		return false
	}

	state := e.gestures.State()
	next, changed := Constrain(cur, e.Envelope(state))
	if !changed {
		return false
	}

	if state.Pinching() {
		// Keep the pinch anchored on the locked center; only altitude follows.
		center := state.Lock.Center
		pos := cur.Position
		pos.Altitude = next.Position.Altitude
		heading, tilt := next.Heading, next.Tilt
		target := domain.CameraTarget{Center: &center, Position: &pos, Heading: &heading, Tilt: &tilt}
		e.log.Debug("pinch correction", "altitude", pos.Altitude, "heading", heading, "tilt", tilt)
		e.coord.Run(target, domain.Instant(), 0, CorrectionPinch)
		return true
	}

	e.log.Debug("camera correction",
		"altitude", next.Position.Altitude, "heading", next.Heading, "tilt", next.Tilt)
	e.coord.Run(domain.TargetFromCamera(next), domain.Instant(), 0, CorrectionLocked)
	return true
}
