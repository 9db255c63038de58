// Package clock abstracts wall-clock time so countdowns and refresh timers
// can be driven manually in tests.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	// Tick returns a channel firing roughly every d, and a stop func.
	Tick(d time.Duration) (<-chan time.Time, func())
}

// Real is the production clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Tick(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Fake is a manually stepped clock for tests.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	ticks []chan time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Tick(d time.Duration) (<-chan time.Time, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 16)
	f.ticks = append(f.ticks, ch)
	return ch, func() {}
}

// Advance moves the clock forward and fires every registered ticker once.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	ticks := f.ticks
	f.mu.Unlock()
	for _, ch := range ticks {
		select {
		case ch <- now:
		default:
		}
	}
}
