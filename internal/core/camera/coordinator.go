package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/domain"
	"github.com/Kkzzkk0611/WSsupportApp-202601/internal/core/ports"
)

// ErrTransitionTimeout is reported for a transition the host never settled.
var ErrTransitionTimeout = errors.New("camera transition not settled in time")

type request struct {
	gen    uint64
	target domain.CameraTarget
	opts   domain.AnimateOptions
	grace  time.Duration
	kind   CorrectionKind
}

// AnimationCoordinator issues controller-initiated camera transitions and
// holds the reentrancy guard for their duration plus a grace delay, so that
// the change notifications they cause are not mistaken for user input.
//
// Requests reach the host one at a time, in the order Run was called. A
// newer request cancels the one in flight and replaces any still waiting to
// be sent, so the host never receives a stale target after a fresh one.
type AnimationCoordinator struct {
	host    ports.CameraHost
	guard   *ReentrancyGuard
	sched   scheduler
	obs     Observer
	log     *slog.Logger
	timeout time.Duration

	// ctx bounds every AnimateTo call. Set before the loop starts.
	ctx context.Context

	mu       sync.Mutex
	next     *request
	inflight context.CancelFunc
	sending  bool
}

func newCoordinator(host ports.CameraHost, guard *ReentrancyGuard, sched scheduler, obs Observer, log *slog.Logger, timeout time.Duration) *AnimationCoordinator {
	return &AnimationCoordinator{
		host:    host,
		guard:   guard,
		sched:   sched,
		obs:     obs,
		log:     log,
		timeout: timeout,
		ctx:     context.Background(),
	}
}

// Run locks the guard and queues a move to target. It returns the generation
// of the new transition without waiting for it.
//
// The guard is released grace after the latest transition settles, whether it
// completed, was aborted, failed or timed out. A transition superseded by a
// later Run never releases the guard.
func (c *AnimationCoordinator) Run(target domain.CameraTarget, opts domain.AnimateOptions, grace time.Duration, kind CorrectionKind) uint64 {
	gen := c.guard.acquire()
	c.obs.CorrectionIssued(kind)

	c.mu.Lock()
	stale := c.next
	c.next = &request{gen: gen, target: target, opts: opts, grace: grace, kind: kind}
	if c.inflight != nil {
		c.inflight()
	}
	start := !c.sending
	c.sending = true
	c.mu.Unlock()

	if stale != nil {
		c.settle(stale.gen, stale.kind, stale.grace, fmt.Errorf("replaced before sending: %w", domain.ErrTransitionAborted))
	}
	if start {
		c.sched.spawn(c.send)
	}
	return gen
}

// send delivers queued requests until none is left. At most one send runs
// at a time.
func (c *AnimationCoordinator) send() {
	for {
		c.mu.Lock()
		req := c.next
		if req == nil {
			c.sending = false
			c.mu.Unlock()
			return
		}
		c.next = nil
		limit := req.opts.Duration + c.timeout
		ctx, cancel := context.WithTimeout(c.ctx, limit)
		c.inflight = cancel
		c.mu.Unlock()

		err := c.host.AnimateTo(ctx, req.target, req.opts)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %v", ErrTransitionTimeout, limit)
		}

		c.mu.Lock()
		c.inflight = nil
		c.mu.Unlock()
		cancel()

		c.sched.post(func() { c.settle(req.gen, req.kind, req.grace, err) })
	}
}

func (c *AnimationCoordinator) settle(gen uint64, kind CorrectionKind, grace time.Duration, err error) {
	outcome := OutcomeCompleted
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrTransitionAborted), errors.Is(err, context.Canceled):
		outcome = OutcomeAborted
		c.log.Debug("camera transition aborted", "kind", kind, "generation", gen)
	case errors.Is(err, ErrTransitionTimeout):
		outcome = OutcomeFailed
		c.log.Warn("camera transition timed out", "kind", kind, "generation", gen, "error", err)
	default:
		outcome = OutcomeFailed
		c.log.Warn("camera transition failed", "kind", kind, "generation", gen, "error", err)
	}
	c.obs.TransitionSettled(kind, outcome)

	if !c.guard.settle(gen, c.sched.clock.Now().Add(grace)) {
		return
	}
	if grace <= 0 {
		c.guard.release(gen)
		return
	}
	c.guard.timer = c.sched.after(grace, func() { c.guard.release(gen) })
}
