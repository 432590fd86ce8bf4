package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

// manualTimers captures scheduled callbacks instead of arming real timers.
func manualTimers(t *testing.T) *[]func() {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })

	var callbacks []func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		callbacks = append(callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
	return &callbacks
}

func TestDebouncerIgnoresStaleTimerCallback(t *testing.T) {
	callbacks := manualTimers(t)

	var calls, events atomic.Int32
	d := New(time.Second, func(n int) {
		calls.Add(1)
		events.Store(int32(n))
	})

	d.Trigger()
	d.Trigger()
	d.Trigger()

	if len(*callbacks) != 3 {
		t.Fatalf("expected 3 scheduled callbacks, got %d", len(*callbacks))
	}
	for _, cb := range *callbacks {
		cb()
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected only latest callback to run, got %d calls", got)
	}
	if got := events.Load(); got != 3 {
		t.Fatalf("events = %d, want 3 coalesced triggers", got)
	}
}

func TestDebouncerCountsResetAfterFire(t *testing.T) {
	callbacks := manualTimers(t)

	var last atomic.Int32
	d := New(time.Second, func(n int) { last.Store(int32(n)) })

	d.Trigger()
	d.Trigger()
	(*callbacks)[1]()
	d.Trigger()
	(*callbacks)[2]()

	if got := last.Load(); got != 1 {
		t.Fatalf("events = %d, want 1 after a fired burst", got)
	}
}

func TestDebouncerStopIgnoresPendingTimerCallback(t *testing.T) {
	callbacks := manualTimers(t)

	var called atomic.Int32
	d := New(time.Second, func(int) { called.Add(1) })

	d.Trigger()
	d.Stop()

	if len(*callbacks) != 1 {
		t.Fatalf("expected a scheduled callback")
	}
	(*callbacks)[0]()

	if got := called.Load(); got != 0 {
		t.Fatalf("expected callback to be ignored after stop, got %d calls", got)
	}
}

func TestDebouncerTriggerOnce(t *testing.T) {
	var count int32
	done := make(chan struct{})
	d := New(10*time.Millisecond, func(int) {
		atomic.AddInt32(&count, 1)
		close(done)
	})
	d.Trigger()
	d.Trigger()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debouncer did not fire")
	}
	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&count) != 1 {
		t.Fatalf("expected one invocation, got %d", count)
	}
}

func TestDebouncerStop(t *testing.T) {
	var count int32
	d := New(20*time.Millisecond, func(int) {
		atomic.AddInt32(&count, 1)
	})
	d.Trigger()
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	if atomic.LoadInt32(&count) != 0 {
		t.Fatalf("expected no invocations after stop, got %d", count)
	}
}

func TestEnsureReusesDebouncer(t *testing.T) {
	var called int32
	var d *Debouncer
	first := Ensure(&d, 5*time.Millisecond, func(int) { atomic.AddInt32(&called, 1) })
	if first == nil || d != first {
		t.Fatal("Ensure should initialize and store the debouncer")
	}
	second := Ensure(&d, 5*time.Millisecond, func(int) { atomic.AddInt32(&called, 10) })
	if first != second {
		t.Fatal("Ensure should not allocate a new debouncer when already set")
	}
	first.Trigger()
	time.Sleep(30 * time.Millisecond)
	if atomic.LoadInt32(&called) != 1 {
		t.Fatalf("new handler should not replace existing debouncer, got %d", called)
	}
}
