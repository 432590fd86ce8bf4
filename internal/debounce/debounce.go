// Package debounce coalesces bursts of file system events into one reload.
package debounce

import (
	"sync"
	"time"
)

// afterFunc is replaced in tests to drive timers by hand.
var afterFunc = time.AfterFunc

// Debouncer runs fn once the triggers stop for delay. fn receives how many
// triggers were folded into the call.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	fn      func(events int)
	gen     uint64
	pending int
}

func New(delay time.Duration, fn func(events int)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Ensure returns *d, creating it first when nil.
func Ensure(d **Debouncer, delay time.Duration, fn func(events int)) *Debouncer {
	if *d == nil {
		*d = New(delay, fn)
	}
	return *d
}

// Trigger restarts the delay.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.pending++
	gen := d.gen
	d.timer = afterFunc(d.delay, func() { d.fire(gen) })
}

// fire ignores callbacks of timers superseded by a later Trigger or Stop;
// Timer.Stop cannot recall a callback that already started.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	events := d.pending
	d.pending = 0
	d.timer = nil
	d.mu.Unlock()
	d.fn(events)
}

// Stop drops pending triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.pending = 0
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
