package camera

import "github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"

// CorrectionKind labels why the controller moved the camera.
type CorrectionKind string

const (
	CorrectionLocked CorrectionKind = "locked"
	CorrectionPinch  CorrectionKind = "pinch"
	CorrectionBounds CorrectionKind = "bounds"
	CorrectionTilt   CorrectionKind = "tilt"
	CorrectionFocus  CorrectionKind = "focus"
	CorrectionReset  CorrectionKind = "reset"
)

// Outcome is how a transition settled.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAborted   Outcome = "aborted"
	OutcomeFailed    Outcome = "failed"
)

// Watcher names used when a notification is dropped.
const (
	WatcherCamera = "camera"
	WatcherCenter = "center"
)

// Observer receives controller events for instrumentation. Calls happen on
// the controller loop and must not block.
type Observer interface {
	GestureClassified(intent domain.Intent)
	CorrectionIssued(kind CorrectionKind)
	TransitionSettled(kind CorrectionKind, outcome Outcome)
	NotificationDropped(watcher string)
}

type nopObserver struct{}

func (nopObserver) GestureClassified(domain.Intent)           {}
func (nopObserver) CorrectionIssued(CorrectionKind)           {}
func (nopObserver) TransitionSettled(CorrectionKind, Outcome) {}
func (nopObserver) NotificationDropped(string)                {}
