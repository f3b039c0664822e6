// Package loop provides the single control goroutine that owns all session
// state. Process readers, timers and the UI never mutate state directly; they
// Post closures that the loop runs one at a time.
package loop

import (
	"context"
	"errors"
)

// ErrStopped is returned by Run after Stop.
var ErrStopped = errors.New("event loop stopped")

// Loop runs posted closures sequentially on the goroutine that called Run.
type Loop struct {
	queue chan func()
	stop  chan struct{}
	done  chan struct{}
}

// New creates a Loop whose queue holds up to buffer pending closures.
// Posting to a full queue blocks the poster, which is how stdout readers
// get backpressure while the loop is busy.
func New(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		queue: make(chan func(), buffer),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Post schedules fn to run on the loop goroutine.
// It is safe to call from any goroutine. Closures posted after the loop
// exits are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run processes closures until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return ErrStopped
		case fn := <-l.queue:
			fn()
		}
	}
}

// Stop makes Run return after the closure currently executing, if any.
// Calling Stop more than once panics, like closing a channel twice.
func (l *Loop) Stop() {
	close(l.stop)
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Immediate is a Dispatcher that runs closures inline on the caller.
// Tests use it to drive controllers without a goroutine.
type Immediate struct{}

// Post runs fn immediately.
func (Immediate) Post(fn func()) { fn() }
