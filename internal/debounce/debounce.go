// Package debounce delays a task until input has been quiet for a while.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before an automatic translation.
const DefaultDelay = 800 * time.Millisecond

// Timer is a pending task. Stop reports whether it prevented the call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
var RealScheduler Scheduler = realScheduler{}

// Debouncer holds at most one pending task. Scheduling again replaces it.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	scheduler Scheduler
	timer     Timer
	seq       uint64
}

// New returns a debouncer. A nil scheduler means the real clock and a
// non-positive delay means DefaultDelay.
func New(delay time.Duration, scheduler Scheduler) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if scheduler == nil {
		scheduler = RealScheduler
	}
	return &Debouncer{delay: delay, scheduler: scheduler}
}

func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule cancels any pending task and arms f.
func (d *Debouncer) Schedule(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq
	d.timer = d.scheduler.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A replaced timer may already have fired past Stop.
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		f()
	})
}

// Cancel drops the pending task, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.timer != nil
	d.stopLocked()
	return pending
}

// Pending reports whether a task is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}
