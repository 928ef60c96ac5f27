package data

import (
	"sync"
	"time"
)

// TimeProvider supplies timestamps written to the store so tests can pin them.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the system time.
type RealTimeProvider struct{}

func (*RealTimeProvider) Now() time.Time { return time.Now() }

// FixedTimeProvider returns a settable time.
type FixedTimeProvider struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedTimeProvider creates a FixedTimeProvider starting at t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{t: t}
}

func (f *FixedTimeProvider) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// AddTime advances the clock by d.
func (f *FixedTimeProvider) AddTime(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}
