package domain

// TouchPhase is the lifecycle stage of a raw touch event.
type TouchPhase string

const (
	TouchStart  TouchPhase = "start"
	TouchMove   TouchPhase = "move"
	TouchEnd    TouchPhase = "end"
	TouchCancel TouchPhase = "cancel"
)

// ScreenPoint is a contact location in screen pixels.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TouchEvent carries the contacts still active after the event.
type TouchEvent struct {
	Phase  TouchPhase    `json:"phase"`
	Points []ScreenPoint `json:"points"`
}

// Intent is the classification of a single input event.
type Intent int

const (
	IntentPan Intent = iota
	IntentZoom
	IntentBlocked
)

func (i Intent) String() string {
	switch i {
	case IntentPan:
		return "pan"
	case IntentZoom:
		return "zoom"
	case IntentBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Decision tells the input layer what to do with an event.
type Decision struct {
	Intent Intent `json:"intent"`
}

// Suppress reports whether the event must not reach the host.
func (d Decision) Suppress() bool {
	return d.Intent == IntentBlocked
}

// Canned decisions.
var (
	DecisionPan     = Decision{Intent: IntentPan}
	DecisionZoom    = Decision{Intent: IntentZoom}
	DecisionBlocked = Decision{Intent: IntentBlocked}
)

// NativeGestureEvent is a platform-synthesized pinch/rotate event.
type NativeGestureEvent struct {
	Kind string `json:"kind"` // gesturestart | gesturechange | gestureend
}
