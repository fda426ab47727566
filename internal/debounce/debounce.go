// Package debounce collapses bursts of calls into one.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer runs the most recent function handed to Trigger once no new
// trigger has arrived for the wait window. With Leading set, the first call of
// a burst also runs immediately.
type Debouncer struct {
	clock   clockwork.Clock
	wait    time.Duration
	leading bool

	mu      sync.Mutex
	timer   clockwork.Timer
	pending func()
	gen     uint64
	stopped bool
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithLeading makes the first trigger of a burst fire immediately.
func WithLeading() Option {
	return func(d *Debouncer) { d.leading = true }
}

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(d *Debouncer) { d.clock = c }
}

// New creates a Debouncer with the given coalescing window.
func New(wait time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{clock: clockwork.NewRealClock(), wait: wait}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Trigger schedules fn, replacing any call still waiting in the window.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	idle := d.timer == nil
	if d.timer != nil {
		d.timer.Stop()
	}

	runNow := d.leading && idle
	if runNow {
		d.pending = nil
	} else {
		d.pending = fn
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen) })
	d.mu.Unlock()

	if runNow {
		fn()
	}
}

// fire runs the pending call unless a newer trigger superseded this timer.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Stop cancels any pending call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
