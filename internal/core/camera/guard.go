package camera

import (
	"time"

	"github.com/facebookgo/clock"
)

// GuardState is the phase of the reentrancy guard.
type GuardState int

const (
	GuardUnlocked GuardState = iota
	GuardLocked
)

func (s GuardState) String() string {
	if s == GuardLocked {
		return "locked"
	}
	return "unlocked"
}

// ReentrancyGuard marks the camera as being moved by the controller itself.
// While locked, watchers ignore change notifications. Each acquisition gets a
// new generation; only the owner of the latest generation may release it, so
// a superseded transition settling late cannot unlock a newer one.
type ReentrancyGuard struct {
	state      GuardState
	generation uint64
	settled    bool
	until      time.Time
	timer      *clock.Timer
}

// Locked reports whether watchers must stand down.
func (g *ReentrancyGuard) Locked() bool {
	return g.state == GuardLocked
}

// State returns the current phase.
func (g *ReentrancyGuard) State() GuardState {
	return g.state
}

// Until is the end of the grace window once the latest transition settled,
// zero while it is still in flight or when unlocked.
func (g *ReentrancyGuard) Until() time.Time {
	return g.until
}

func (g *ReentrancyGuard) acquire() uint64 {
	g.stopTimer()
	g.generation++
	g.state = GuardLocked
	g.settled = false
	g.until = time.Time{}
	return g.generation
}

// settle records that transition gen finished. It returns false when gen was
// superseded and must not schedule a release.
func (g *ReentrancyGuard) settle(gen uint64, until time.Time) bool {
	if gen != g.generation || g.state != GuardLocked {
		return false
	}
	g.settled = true
	g.until = until
	return true
}

func (g *ReentrancyGuard) release(gen uint64) bool {
	if gen != g.generation || !g.settled {
		return false
	}
	g.stopTimer()
	g.state = GuardUnlocked
	g.until = time.Time{}
	return true
}

func (g *ReentrancyGuard) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
