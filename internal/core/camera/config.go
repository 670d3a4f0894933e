package camera

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// Config is the operating envelope and timing of a controller.
type Config struct {
	MinAltitude  float64
	MaxAltitude  float64
	FixedHeading float64

	MinTilt  float64
	MaxTilt  float64
	TiltStep float64

	// Tolerance is the heading/tilt deviation (degrees) ignored as host noise.
	Tolerance float64
	// PinchDeadband is the |ratio-1| under which a two-finger move is not a zoom.
	PinchDeadband float64

	InitialCamera domain.Camera
	FocusAltitude float64

	TiltTransition   time.Duration
	TiltGrace        time.Duration
	ReturnTransition time.Duration
	ReturnGrace      time.Duration
	FocusTransition  time.Duration
	FocusGrace       time.Duration

	// SettleTimeout is how long past its duration a transition may stay
	// unsettled before it is abandoned and the guard released.
	SettleTimeout time.Duration
}

// DefaultConfig returns the envelope used by the survey map.
func DefaultConfig() Config {
	return Config{
		MinAltitude:  5,
		MaxAltitude:  1000,
		FixedHeading: 0,

		MinTilt:  0,
		MaxTilt:  80,
		TiltStep: 15,

		Tolerance:     0.3,
		PinchDeadband: 0.02,

		InitialCamera: domain.Camera{
			Position: domain.Position{
				Longitude: (139.621 + 139.658) / 2,
				Latitude:  (35.5035 + 35.555) / 2,
				Altitude:  1000,
			},
			Heading: 0,
			Tilt:    60,
		},
		FocusAltitude: 300,

		TiltTransition:   400 * time.Millisecond,
		TiltGrace:        200 * time.Millisecond,
		ReturnTransition: 1000 * time.Millisecond,
		ReturnGrace:      150 * time.Millisecond,
		FocusTransition:  800 * time.Millisecond,
		FocusGrace:       200 * time.Millisecond,
		SettleTimeout:    2 * time.Second,
	}
}

// Validate checks that the envelope is consistent.
func (c Config) Validate() error {
	var errs []string

	if c.MinAltitude < 0 || c.MinAltitude >= c.MaxAltitude {
		errs = append(errs, fmt.Sprintf("altitude range [%g,%g] is empty", c.MinAltitude, c.MaxAltitude))
	}
	if c.MinTilt < 0 || c.MaxTilt > 90 || c.MinTilt > c.MaxTilt {
		errs = append(errs, fmt.Sprintf("tilt range [%g,%g] must lie within [0,90]", c.MinTilt, c.MaxTilt))
	}
	if c.TiltStep <= 0 {
		errs = append(errs, "tilt step must be positive")
	}
	if c.FixedHeading < 0 || c.FixedHeading >= 360 {
		errs = append(errs, fmt.Sprintf("fixed heading %g outside [0,360)", c.FixedHeading))
	}
	if c.Tolerance < 0 {
		errs = append(errs, "tolerance must not be negative")
	}
	if c.PinchDeadband <= 0 || c.PinchDeadband >= 1 {
		errs = append(errs, "pinch deadband must be in (0,1)")
	}
	if t := c.InitialCamera.Tilt; t < c.MinTilt || t > c.MaxTilt {
		errs = append(errs, fmt.Sprintf("initial tilt %g outside tilt range", t))
	}
	if z := c.InitialCamera.Position.Altitude; z < c.MinAltitude || z > c.MaxAltitude {
		errs = append(errs, fmt.Sprintf("initial altitude %g outside altitude range", z))
	}
	if c.TiltGrace < 0 || c.ReturnGrace < 0 || c.FocusGrace < 0 {
		errs = append(errs, "grace delays must not be negative")
	}
	if c.SettleTimeout <= 0 {
		errs = append(errs, "settle timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("camera config invalid:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
