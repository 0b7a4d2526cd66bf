// Package debounce coalesces rapid successive inputs into one.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search input.
const DefaultDelay = 250 * time.Millisecond

// Debouncer delivers the last pushed value once no new value has arrived for
// the configured delay. Earlier pending values are dropped.
//
// apply runs on a timer goroutine unless triggered by [Debouncer.Flush].
// A Debouncer is safe for concurrent use.
type Debouncer[T any] struct {
	delay time.Duration
	apply func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	gen     uint64
	stopped bool
}

// New returns a Debouncer that calls apply after delay of quiescence.
func New[T any](delay time.Duration, apply func(T)) *Debouncer[T] {
	if apply == nil {
		panic("debounce: apply is nil")
	}

	return &Debouncer[T]{delay: delay, apply: apply}
}

// Push replaces any pending value with v and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	d.pending = v
	d.armed = true

	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire delivers the pending value if no newer push superseded it.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()

	if !d.armed || gen != d.gen {
		d.mu.Unlock()

		return
	}

	v := d.pending
	d.armed = false
	d.mu.Unlock()

	d.apply(v)
}

// Flush delivers a pending value immediately. It reports whether a value was
// pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()

	if !d.armed {
		d.mu.Unlock()

		return false
	}

	if d.timer != nil {
		d.timer.Stop()
	}

	v := d.pending
	d.armed = false
	d.gen++
	d.mu.Unlock()

	d.apply(v)

	return true
}

// Cancel drops a pending value without delivering it.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.armed = false
	d.gen++
}

// Pending reports whether a value is waiting to be delivered.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.armed
}

// Stop cancels any pending value and ignores later pushes.
func (d *Debouncer[T]) Stop() {
	d.Cancel()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
