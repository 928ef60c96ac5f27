package service

import (
	"sync"
	"time"

	"github.com/lumicrm/portalgate/internal/observability/metrics"
)

type stepObservation struct {
	step string
	err  error
}

// recordingMetrics captures everything reported to metrics.GateMetrics.
type recordingMetrics struct {
	mu        sync.Mutex
	decisions []metrics.Decision
	steps     []stepObservation
	refreshes []string
	logins    []string
}

func (m *recordingMetrics) ObserveDecision(d metrics.Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
}

func (m *recordingMetrics) ObserveStep(step string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, stepObservation{step: step, err: err})
}

func (m *recordingMetrics) IncSessionRefresh(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes = append(m.refreshes, result)
}

func (m *recordingMetrics) IncLogin(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, result)
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock { return &clock{now: t} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
