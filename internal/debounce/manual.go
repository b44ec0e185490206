package debounce

import (
	"sync"
	"time"
)

// Manual is a Scheduler whose timers only fire when Fire is called.
type Manual struct {
	mu     sync.Mutex
	timers []*manualTimer
	delays []time.Duration
}

type manualTimer struct {
	m       *Manual
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{m: m, f: f}
	m.timers = append(m.timers, t)
	m.delays = append(m.delays, d)
	return t
}

// Fire runs every armed timer on the calling goroutine and returns how many
// ran.
func (m *Manual) Fire() int {
	m.mu.Lock()
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()
	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Armed returns the number of timers that would run on Fire.
func (m *Manual) Armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// LastDelay returns the delay of the most recently armed timer.
func (m *Manual) LastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.delays) == 0 {
		return 0
	}
	return m.delays[len(m.delays)-1]
}
