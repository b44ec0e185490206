package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesBursts(t *testing.T) {
	s := &Manual{}
	d := New(0, s)
	var calls int32

	for i := 0; i < 5; i++ {
		d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	}
	if !d.Pending() {
		t.Fatal("expected pending task")
	}

	if n := s.Fire(); n != 1 {
		t.Errorf("expected one armed timer, got %d", n)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected exactly one call, got %d", got)
	}
	if d.Pending() {
		t.Error("expected nothing pending after firing")
	}
	if s.LastDelay() != DefaultDelay {
		t.Errorf("expected default delay, got %v", s.LastDelay())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	s := &Manual{}
	d := New(100*time.Millisecond, s)
	called := false

	d.Schedule(func() { called = true })
	if !d.Cancel() {
		t.Error("expected Cancel to report a pending task")
	}
	s.Fire()

	if called {
		t.Error("cancelled task must not run")
	}
	if d.Cancel() {
		t.Error("expected nothing pending on second Cancel")
	}
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

// leakyScheduler returns timers whose Stop never wins, like a time.Timer
// that has already started its goroutine.
type leakyScheduler struct{ fs []func() }

func (l *leakyScheduler) AfterFunc(d time.Duration, f func()) Timer {
	l.fs = append(l.fs, f)
	return leakyTimer{}
}

func TestDebouncer_IgnoresTimerThatFiresAfterReplace(t *testing.T) {
	s := &leakyScheduler{}
	d := New(time.Millisecond, s)
	var got []int

	d.Schedule(func() { got = append(got, 1) })
	d.Schedule(func() { got = append(got, 2) })
	for _, f := range s.fs {
		f()
	}

	if len(got) != 1 || got[0] != 2 {
		t.Errorf("expected only the latest task to run, got %v", got)
	}
}

func TestDebouncer_RealScheduler(t *testing.T) {
	d := New(10*time.Millisecond, nil)
	done := make(chan struct{})

	d.Schedule(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}
