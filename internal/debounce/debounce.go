// Package debounce delays a callback until its input has been quiet for a
// fixed interval.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending value. Every Push replaces the value
// and restarts the quiescence timer; when the timer expires the latest value
// is handed to the callback. Intermediate values are discarded, not merged.
//
// Deliveries never overlap and arrive in Push order. fn must not call Flush.
type Debouncer[T any] struct {
	deliver  sync.Mutex // held around fn
	mu       sync.Mutex
	interval time.Duration
	fn       func(T)

	timer      *time.Timer
	gen        uint64 // bumped on every Push so a stale timer can tell it lost
	pending    bool
	delivering bool
	value      T
	stopped    bool
}

// New creates a debouncer calling fn after interval of quiescence.
func New[T any](interval time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{interval: interval, fn: fn}
}

// Push records v as the latest value and restarts the timer. Pushes after
// Stop are ignored.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.value = v
	d.pending = true
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() { d.fire(gen) })
}

// Flush delivers the pending value now, if there is one.
func (d *Debouncer[T]) Flush() {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	v, ok := d.take()
	d.mu.Unlock()

	d.run(v, ok)
}

// Stop drops any pending value and disables the debouncer.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
	d.pending = false
	var zero T
	d.value = zero
}

// Pending reports whether a value is waiting to be flushed or is being
// handed to the callback right now.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending || d.delivering
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	v, ok := d.take()
	d.mu.Unlock()

	d.run(v, ok)
}

// run must be called with deliver held.
func (d *Debouncer[T]) run(v T, ok bool) {
	if !ok {
		return
	}
	defer func() {
		d.mu.Lock()
		d.delivering = false
		d.mu.Unlock()
	}()
	d.fn(v)
}

// take must be called with mu held.
func (d *Debouncer[T]) take() (T, bool) {
	var zero T
	if !d.pending || d.stopped {
		return zero, false
	}
	v := d.value
	d.pending = false
	d.delivering = true
	d.value = zero
	return v, true
}
