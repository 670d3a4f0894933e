package metrics

import (
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/camera"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// CameraObserver feeds controller events into the camera counters.
type CameraObserver struct{}

var _ camera.Observer = CameraObserver{}

func (CameraObserver) GestureClassified(intent domain.Intent) {
	GestureIntents.WithLabelValues(intent.String()).Inc()
}

func (CameraObserver) CorrectionIssued(kind camera.CorrectionKind) {
	CameraCorrections.WithLabelValues(string(kind)).Inc()
}

func (CameraObserver) TransitionSettled(kind camera.CorrectionKind, outcome camera.Outcome) {
	CameraTransitions.WithLabelValues(string(kind), string(outcome)).Inc()
}

func (CameraObserver) NotificationDropped(watcher string) {
	CameraNotificationsDropped.WithLabelValues(watcher).Inc()
}
