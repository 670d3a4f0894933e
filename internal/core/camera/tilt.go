package camera

import "github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"

// TiltBaseline is the user-chosen tilt the enforcer holds the camera to
// outside of a pinch. It is owned by the controller loop.
type TiltBaseline struct {
	allowed float64
	min     float64
	max     float64
	step    float64
}

// NewTiltBaseline clamps initial into [min,max].
func NewTiltBaseline(initial, min, max, step float64) *TiltBaseline {
	return &TiltBaseline{
		allowed: clamp(initial, min, max),
		min:     min,
		max:     max,
		step:    step,
	}
}

// Get returns the current baseline.
func (b *TiltBaseline) Get() float64 {
	return b.allowed
}

// Adjust moves the baseline one step. Up lowers the tilt towards top-down,
// down raises it towards the horizon. Unknown directions leave it unchanged.
func (b *TiltBaseline) Adjust(dir domain.TiltDirection) float64 {
	switch dir {
	case domain.TiltUp:
		b.allowed = clamp(b.allowed-b.step, b.min, b.max)
	case domain.TiltDown:
		b.allowed = clamp(b.allowed+b.step, b.min, b.max)
	}
	return b.allowed
}

// TopDown reports whether the baseline asks for the top-down presentation.
func (b *TiltBaseline) TopDown() bool {
	return domain.IsTopDown(b.allowed)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
