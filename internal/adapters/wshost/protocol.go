package wshost

import (
	"time"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Client message types.
const (
	TypeTouch   = "touch"
	TypeGesture = "gesture"
	TypeKey     = "key"
	TypeDrag    = "drag"
	TypeCamera  = "camera"
	TypeSettled = "settled"
	TypeTilt    = "tilt"
	TypeFocus   = "focus"
	TypeReset   = "reset"
	TypeStatus  = "status"
)

// Server message types. TypeTilt and TypeStatus are shared.
const (
	TypeHello    = "hello"
	TypeDecision = "decision"
	TypeAnimate  = "animate"
	TypeError    = "error"
)

// Settle outcomes reported by the client.
const (
	OutcomeOK      = "ok"
	OutcomeAborted = "aborted"
	OutcomeFailed  = "failed"
)

// Inbound is a client message. Only the fields of its type are set.
type Inbound struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq,omitempty"`

	Touch   *domain.TouchEvent         `json:"touch,omitempty"`
	Gesture *domain.NativeGestureEvent `json:"gesture,omitempty"`
	Key     string                     `json:"key,omitempty"`
	Button  *int                       `json:"button,omitempty"`

	Camera *domain.Camera   `json:"camera,omitempty"`
	Center *domain.MapPoint `json:"center,omitempty"`

	ID      string `json:"id,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`

	Direction domain.TiltDirection `json:"direction,omitempty"`
	Point     *domain.MapPoint     `json:"point,omitempty"`
}

// Options is the wire form of domain.AnimateOptions.
type Options struct {
	Animate    bool   `json:"animate"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Easing     string `json:"easing,omitempty"`
}

func optionsFrom(o domain.AnimateOptions) *Options {
	return &Options{Animate: o.Animate, DurationMS: o.Duration.Milliseconds(), Easing: o.Easing}
}

// AnimateOptions converts back to the domain form.
func (o Options) AnimateOptions() domain.AnimateOptions {
	return domain.AnimateOptions{Animate: o.Animate, Duration: time.Duration(o.DurationMS) * time.Millisecond, Easing: o.Easing}
}

// Outbound is a server message.
type Outbound struct {
	Type string `json:"type"`
	Seq  uint64 `json:"seq,omitempty"`

	Session          string `json:"session,omitempty"`
	SpatialReference int    `json:"spatial_reference,omitempty"`

	Intent   string `json:"intent,omitempty"`
	Suppress bool   `json:"suppress,omitempty"`

	ID      string               `json:"id,omitempty"`
	Target  *domain.CameraTarget `json:"target,omitempty"`
	Options *Options             `json:"options,omitempty"`

	Tilt    *float64       `json:"tilt,omitempty"`
	TopDown *bool          `json:"top_down,omitempty"`
	Status  *camera.Status `json:"status,omitempty"`

	Message string `json:"message,omitempty"`
}
