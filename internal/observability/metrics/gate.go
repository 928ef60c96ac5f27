// Package metrics records gate and session counters to Prometheus and/or StatsD.
package metrics

import (
	"time"

	obserrors "github.com/lumicrm/portalgate/internal/observability/errors"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Resolution steps timed and counted by the gate.
const (
	StepSession     = "session"
	StepPermissions = "permissions"
)

// Decision describes one gate verdict for metric emission.
type Decision struct {
	Class    string
	Outcome  string
	Reason   string
	Duration time.Duration
}

// GateMetrics is what the gate, the auth service and the session resolver report to.
// Implementations must be safe for concurrent use.
type GateMetrics interface {
	ObserveDecision(d Decision)
	ObserveStep(step string, d time.Duration, err error)
	IncSessionRefresh(result string)
	IncLogin(result string)
}

// Noop implements GateMetrics without emitting anything.
type Noop struct{}

func (Noop) ObserveDecision(Decision)                 {}
func (Noop) ObserveStep(string, time.Duration, error) {}
func (Noop) IncSessionRefresh(string)                 {}
func (Noop) IncLogin(string)                          {}

// Multi fans out to several GateMetrics.
type Multi []GateMetrics

func (m Multi) ObserveDecision(d Decision) {
	for _, g := range m {
		g.ObserveDecision(d)
	}
}

func (m Multi) ObserveStep(step string, d time.Duration, err error) {
	for _, g := range m {
		g.ObserveStep(step, d, err)
	}
}

func (m Multi) IncSessionRefresh(result string) {
	for _, g := range m {
		g.IncSessionRefresh(result)
	}
}

func (m Multi) IncLogin(result string) {
	for _, g := range m {
		g.IncLogin(result)
	}
}

// Combine returns a single GateMetrics for the given sinks, dropping nils.
func Combine(sinks ...GateMetrics) GateMetrics {
	var out Multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Noop{}
	case 1:
		return out[0]
	default:
		return out
	}
}

// errorClass returns the tag value for err, "none" when err is nil.
func errorClass(err error) string {
	if err == nil {
		return "none"
	}
	return obserrors.Classify(err)
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
