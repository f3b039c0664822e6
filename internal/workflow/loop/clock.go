package loop

import (
	"sync"
	"time"
)

// Dispatcher schedules closures onto the control goroutine.
type Dispatcher interface {
	Post(fn func())
}

// Timer is a handle to a repeating or one-shot timer. Stop is idempotent.
type Timer interface {
	Stop()
}

// Clock creates timers whose callbacks run through a Dispatcher.
type Clock struct {
	dispatcher Dispatcher
}

// NewClock creates a Clock that posts callbacks to d.
func NewClock(d Dispatcher) *Clock {
	if d == nil {
		panic("dispatcher is required")
	}
	return &Clock{dispatcher: d}
}

// Every calls fn on the dispatcher every interval until the timer is stopped.
func (c *Clock) Every(interval time.Duration, fn func()) Timer {
	t := &ticker{
		ticker: time.NewTicker(interval),
		quit:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.quit:
				return
			case <-t.ticker.C:
				c.dispatcher.Post(fn)
			}
		}
	}()
	return t
}

// After calls fn on the dispatcher once after d, unless stopped first.
func (c *Clock) After(d time.Duration, fn func()) Timer {
	return &oneShot{timer: time.AfterFunc(d, func() { c.dispatcher.Post(fn) })}
}

type ticker struct {
	ticker *time.Ticker
	quit   chan struct{}
	once   sync.Once
}

func (t *ticker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.quit)
	})
}

type oneShot struct {
	timer *time.Timer
}

func (t *oneShot) Stop() {
	t.timer.Stop()
}
