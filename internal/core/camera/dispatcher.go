package camera

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// scheduler is how controller components reach the outside world: blocking
// host calls run on spawned goroutines, and every continuation comes back
// through post so that state is only touched by the loop goroutine.
type scheduler struct {
	clock clock.Clock
	post  func(fn func()) bool
	spawn func(fn func())
}

// after runs fn on the loop once d has elapsed on the scheduler clock.
func (s scheduler) after(d time.Duration, fn func()) *clock.Timer {
	return s.clock.AfterFunc(d, func() { s.post(fn) })
}

// loop is a single-consumer FIFO of closures.
type loop struct {
	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func newLoop(size int) *loop {
	return &loop{
		inbox: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// post enqueues fn. It blocks while the queue is full and reports false
// once the loop has stopped. Must not be called from the loop goroutine.
func (l *loop) post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inbox <- fn:
		return true
	case <-l.done:
		return false
	}
}

func (l *loop) run(ctx context.Context) {
	for {
		select {
		case fn := <-l.inbox:
			fn()
		case <-ctx.Done():
			l.stop()
			return
		case <-l.done:
			return
		}
	}
}

func (l *loop) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
