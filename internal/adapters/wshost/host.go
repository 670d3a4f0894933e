package wshost

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
)

// ErrDisconnected fails transitions whose client went away.
var ErrDisconnected = errors.New("camera host disconnected")

// Host is a ports.CameraHost backed by a remote scene view. Camera state is
// the last snapshot the client reported; transitions are sent as animate
// messages and complete when the client reports them settled.
type Host struct {
	sr     domain.SpatialReference
	send   func(Outbound) error
	tracer trace.Tracer

	mu      sync.Mutex
	cam     domain.Camera
	center  domain.MapPoint
	pending map[string]chan error
	closed  bool
}

// NewHost creates a host. send must be safe for concurrent use.
func NewHost(sr domain.SpatialReference, cam domain.Camera, center domain.MapPoint, send func(Outbound) error) *Host {
	return &Host{
		sr:      sr,
		send:    send,
		tracer:  otel.Tracer("artmap/wshost"),
		cam:     cam,
		center:  center,
		pending: make(map[string]chan error),
	}
}

func (h *Host) Camera() domain.Camera {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cam
}

func (h *Host) Center() domain.MapPoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.center
}

func (h *Host) SpatialReference() domain.SpatialReference {
	return h.sr
}

// UpdateCamera records a camera snapshot from the client.
func (h *Host) UpdateCamera(cam domain.Camera) {
	h.mu.Lock()
	h.cam = cam
	h.mu.Unlock()
}

// UpdateCenter records a view center from the client.
func (h *Host) UpdateCenter(center domain.MapPoint) {
	h.mu.Lock()
	h.center = center
	h.mu.Unlock()
}

// AnimateTo sends target to the client and waits for it to settle. Any
// transition still pending is aborted first, as the scene view would.
func (h *Host) AnimateTo(ctx context.Context, target domain.CameraTarget, opts domain.AnimateOptions) error {
	id := uuid.NewString()
	ctx, span := h.tracer.Start(ctx, "camera.animate", trace.WithAttributes(
		attribute.String("transition.id", id),
		attribute.Bool("transition.animate", opts.Animate),
		attribute.Int64("transition.duration_ms", opts.Duration.Milliseconds()),
	))
	defer span.End()

	done := make(chan error, 1)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		span.SetStatus(codes.Error, ErrDisconnected.Error())
		return ErrDisconnected
	}
	for pid, ch := range h.pending {
		ch <- domain.ErrTransitionAborted
		delete(h.pending, pid)
	}
	h.pending[id] = done
	h.mu.Unlock()

	if err := h.send(Outbound{Type: TypeAnimate, ID: id, Target: &target, Options: optionsFrom(opts)}); err != nil {
		h.forget(id)
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return fmt.Errorf("send animate %s: %w", id, err)
	}

	select {
	case err := <-done:
		switch {
		case err == nil:
			span.SetAttributes(attribute.String("transition.outcome", OutcomeOK))
		case errors.Is(err, domain.ErrTransitionAborted):
			span.SetAttributes(attribute.String("transition.outcome", OutcomeAborted))
		default:
			span.SetAttributes(attribute.String("transition.outcome", OutcomeFailed))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	case <-ctx.Done():
		h.forget(id)
		return ctx.Err()
	}
}

// Settle completes transition id with the outcome reported by the client.
// Unknown ids (already superseded or timed out) are ignored.
func (h *Host) Settle(id, outcome, message string) bool {
	h.mu.Lock()
	ch, ok := h.pending[id]
	delete(h.pending, id)
	h.mu.Unlock()
	if !ok {
		return false
	}

	switch outcome {
	case OutcomeOK, "":
		ch <- nil
	case OutcomeAborted:
		ch <- domain.ErrTransitionAborted
	default:
		if message == "" {
			message = "client reported failure"
		}
		ch <- fmt.Errorf("transition %s: %s", id, message)
	}
	return true
}

// Pending returns the number of unsettled transitions.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// Close fails every outstanding transition and rejects new ones.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.pending {
		ch <- ErrDisconnected
		delete(h.pending, id)
	}
}

func (h *Host) forget(id string) {
	h.mu.Lock()
	delete(h.pending, id)
	h.mu.Unlock()
}
