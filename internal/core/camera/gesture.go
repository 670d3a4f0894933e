package camera

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// GesturePhase is the coarse touch state.
type GesturePhase int

const (
	PhaseIdle GesturePhase = iota
	PhasePanning
	PhasePinching
)

func (p GesturePhase) String() string {
	switch p {
	case PhasePanning:
		return "panning"
	case PhasePinching:
		return "pinching"
	default:
		return "idle"
	}
}

// PinchLock is the camera snapshot taken when a second finger lands. While
// pinching, the view is held to this center, heading and tilt and only the
// altitude follows the fingers.
type PinchLock struct {
	Center  domain.MapPoint `json:"center"`
	Heading float64         `json:"heading"`
	Tilt    float64         `json:"tilt"`
}

// GestureState is the classifier state. Lock is non-nil exactly when Phase is
// PhasePinching. StartDistance is nil until the first two-finger sample of
// the current pinch segment.
type GestureState struct {
	Phase         GesturePhase
	Fingers       int
	StartDistance *float64
	Lock          *PinchLock
}

// Pinching reports whether a two-finger lock is in effect.
func (s GestureState) Pinching() bool {
	return s.Phase == PhasePinching && s.Lock != nil
}

// GestureClassifier maps raw touch input to pan/zoom/blocked and tracks the
// pinch lock consumed by the enforcer.
type GestureClassifier struct {
	state    GestureState
	deadband float64
	snapshot func() PinchLock
}

// NewGestureClassifier returns an idle classifier. snapshot is called when a
// pinch begins to capture the current camera.
func NewGestureClassifier(deadband float64, snapshot func() PinchLock) *GestureClassifier {
	return &GestureClassifier{deadband: deadband, snapshot: snapshot}
}

// State returns a copy of the current state.
func (g *GestureClassifier) State() GestureState {
	s := g.state
	if s.StartDistance != nil {
		d := *s.StartDistance
		s.StartDistance = &d
	}
	if s.Lock != nil {
		l := *s.Lock
		s.Lock = &l
	}
	return s
}

// Classify updates the state for ev and returns what to do with it.
func (g *GestureClassifier) Classify(ev domain.TouchEvent) domain.Decision {
	n := len(ev.Points)

	switch ev.Phase {
	case domain.TouchStart:
		g.state.Fingers = n
		switch {
		case n >= 3:
			return domain.DecisionBlocked
		case n == 2:
			g.beginPinch()
			d := pinchDistance(ev.Points)
			g.state.StartDistance = &d
			return domain.DecisionZoom
		case n == 1:
			g.state.Phase = PhasePanning
			g.state.Lock = nil
			g.state.StartDistance = nil
		}
		return domain.DecisionPan

	case domain.TouchMove:
		if n == 0 {
			return domain.DecisionPan
		}
		g.state.Fingers = n
		switch {
		case n >= 3:
			return domain.DecisionBlocked
		case n == 2:
			return g.classifyPinch(pinchDistance(ev.Points))
		}
		if g.state.Phase == PhaseIdle {
			g.state.Phase = PhasePanning
		}
		return domain.DecisionPan

	case domain.TouchEnd:
		g.state.Fingers = n
		g.state.StartDistance = nil
		if n < 2 {
			g.state.Lock = nil
			g.state.Phase = PhaseIdle
			if n == 1 {
				g.state.Phase = PhasePanning
			}
		}
		return domain.DecisionPan

	case domain.TouchCancel:
		g.state = GestureState{}
		return domain.DecisionPan
	}

	return domain.DecisionPan
}

func (g *GestureClassifier) classifyPinch(dist float64) domain.Decision {
	if !g.state.Pinching() {
		// Both fingers landed between samples.
		g.beginPinch()
	}
	if g.state.StartDistance == nil || *g.state.StartDistance <= 0 {
		g.state.StartDistance = &dist
	}

	start := *g.state.StartDistance
	if start <= 0 {
		return domain.DecisionBlocked
	}
	if math.Abs(dist/start-1) < g.deadband {
		return domain.DecisionBlocked
	}
	return domain.DecisionZoom
}

func (g *GestureClassifier) beginPinch() {
	lock := g.snapshot()
	g.state.Phase = PhasePinching
	g.state.Lock = &lock
	g.state.StartDistance = nil
}

func pinchDistance(pts []domain.ScreenPoint) float64 {
	a := orb.Point{pts[0].X, pts[0].Y}
	b := orb.Point{pts[1].X, pts[1].Y}
	return planar.Distance(a, b)
}
