package metrics

import (
	"time"

	"github.com/lumicrm/portalgate/internal/observability/statsd"
)

// StatsD implements GateMetrics on top of a StatsD sink.
type StatsD struct {
	sink statsd.Sink
}

var _ GateMetrics = StatsD{}

// NewStatsD wraps sink. A nil sink yields Noop.
func NewStatsD(sink statsd.Sink) GateMetrics {
	if sink == nil {
		return Noop{}
	}
	return StatsD{sink: sink}
}

func (s StatsD) ObserveDecision(d Decision) {
	tags := map[string]string{"class": d.Class, "outcome": d.Outcome, "reason": d.Reason}
	s.sink.Count("gate.decision", 1, tags)
	if d.Duration > 0 {
		s.sink.Timing("gate.decision.duration", d.Duration, map[string]string{"class": d.Class})
	}
}

func (s StatsD) ObserveStep(step string, d time.Duration, err error) {
	s.sink.Timing("gate.step.duration", d, map[string]string{"step": step, "result": resultOf(err)})
	if err != nil {
		s.sink.Count("gate.step.error", 1, map[string]string{"step": step, "error_class": errorClass(err)})
	}
}

func (s StatsD) IncSessionRefresh(result string) {
	s.sink.Count("session.refresh", 1, map[string]string{"result": result})
}

func (s StatsD) IncLogin(result string) {
	s.sink.Count("auth.login", 1, map[string]string{"result": result})
}
