package domain

import "time"

// Position is the camera eye location. Altitude is in meters above ground.
type Position struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// Camera is a snapshot of the host-owned camera state.
type Camera struct {
	Position Position `json:"position"`
	Heading  float64  `json:"heading"` // degrees [0,360)
	Tilt     float64  `json:"tilt"`    // degrees [0,80]
}

// CameraTarget is a partial camera requested from the host. Nil fields are
// left to the host. When Center is set the host keeps that map point in the
// middle of the view and uses Position only for altitude.
type CameraTarget struct {
	Center   *MapPoint `json:"center,omitempty"`
	Position *Position `json:"position,omitempty"`
	Heading  *float64  `json:"heading,omitempty"`
	Tilt     *float64  `json:"tilt,omitempty"`
}

// TargetFromCamera builds a full target from a camera snapshot.
func TargetFromCamera(c Camera) CameraTarget {
	pos := c.Position
	heading, tilt := c.Heading, c.Tilt
	return CameraTarget{Position: &pos, Heading: &heading, Tilt: &tilt}
}

// Easing names accepted by the host.
const (
	EaseLinear   = "linear"
	EaseOutCubic = "out-cubic"
	EaseOutQuart = "out-quart"
	EaseOutExpo  = "out-expo"
)

// AnimateOptions controls how the host transitions to a target.
type AnimateOptions struct {
	Animate  bool          `json:"animate"`
	Duration time.Duration `json:"-"`
	Easing   string        `json:"easing,omitempty"`
}

// Instant is a non-animated transition.
func Instant() AnimateOptions {
	return AnimateOptions{Animate: false}
}

// Animated is an eased transition of the given duration.
func Animated(d time.Duration, easing string) AnimateOptions {
	return AnimateOptions{Animate: true, Duration: d, Easing: easing}
}

// TiltDirection is the manual tilt control direction.
type TiltDirection string

const (
	TiltUp   TiltDirection = "up"   // towards top-down, decreases tilt
	TiltDown TiltDirection = "down" // towards the horizon, increases tilt
)

// Valid reports whether d is a known direction.
func (d TiltDirection) Valid() bool {
	return d == TiltUp || d == TiltDown
}

// TopDownTilt is the tilt under which the view is presented as top-down.
const TopDownTilt = 10.0

// IsTopDown reports whether tilt is shallow enough for the top-down presentation.
func IsTopDown(tilt float64) bool {
	return tilt < TopDownTilt
}
