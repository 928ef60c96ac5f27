package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prom implements GateMetrics backed by Prometheus collectors.
type Prom struct {
	decisions    *prometheus.CounterVec
	decisionTime *prometheus.HistogramVec
	steps        *prometheus.HistogramVec
	stepErrors   *prometheus.CounterVec
	refreshes    *prometheus.CounterVec
	logins       *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

var _ GateMetrics = (*Prom)(nil)

// NewProm registers the gate collectors on reg. A nil reg uses a fresh private registry,
// which keeps tests and multiple instances from colliding on the default registry.
func NewProm(namespace string, reg *prometheus.Registry) (*Prom, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	p := &Prom{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Gate decisions by route class, outcome and reason",
		}, []string{"class", "outcome", "reason"}),
		decisionTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gate_decision_duration_seconds",
			Help:      "Time spent deciding one request",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 3},
		}, []string{"class"}),
		steps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gate_step_duration_seconds",
			Help:      "Duration of session and permission resolution",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step", "result"}),
		stepErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_step_errors_total",
			Help:      "Resolution failures by step and error class",
		}, []string{"step", "error_class"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_refresh_total",
			Help:      "Session refresh attempts by result",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Completed sign-ins by result",
		}, []string{"result"}),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{p.decisions, p.decisionTime, p.steps, p.stepErrors, p.refreshes, p.logins} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prom) ObserveDecision(d Decision) {
	p.decisions.WithLabelValues(d.Class, d.Outcome, d.Reason).Inc()
	if d.Duration > 0 {
		p.decisionTime.WithLabelValues(d.Class).Observe(d.Duration.Seconds())
	}
}

func (p *Prom) ObserveStep(step string, d time.Duration, err error) {
	p.steps.WithLabelValues(step, resultOf(err)).Observe(d.Seconds())
	if err != nil {
		p.stepErrors.WithLabelValues(step, errorClass(err)).Inc()
	}
}

func (p *Prom) IncSessionRefresh(result string) { p.refreshes.WithLabelValues(result).Inc() }

func (p *Prom) IncLogin(result string) { p.logins.WithLabelValues(result).Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
