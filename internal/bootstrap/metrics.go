package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lumicrm/portalgate/config"
	"github.com/lumicrm/portalgate/internal/observability/metrics"
	"github.com/lumicrm/portalgate/internal/observability/statsd"
)

// Metrics bundles the gate metrics sink with its optional scrape endpoint.
type Metrics struct {
	Gate    metrics.GateMetrics
	Handler http.Handler // nil when Prometheus is disabled
	closers []func() error
}

// Close releases sink resources.
func (m *Metrics) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BuildMetrics wires the Prometheus registry and, when enabled, the StatsD client.
// A StatsD dial failure is logged and leaves Prometheus in place.
func BuildMetrics(ctx context.Context, cfg config.ObservabilityMetricsConfig, logger *slog.Logger) (*Metrics, error) {
	out := &Metrics{}
	var sinks []metrics.GateMetrics

	if cfg.PrometheusEnabled {
		prom, err := metrics.NewProm(cfg.Prefix, nil)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, prom)
		out.Handler = prom.Handler()
	}

	if cfg.IsEnabled() {
		client, err := statsd.NewClient(ctx, statsd.Config{
			Enabled: true,
			Address: cfg.StatsdAddress,
			Prefix:  cfg.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.WarnContext(ctx, "statsd disabled", "address", cfg.StatsdAddress, "error", err)
		} else {
			sinks = append(sinks, metrics.NewStatsD(client))
			out.closers = append(out.closers, client.Close)
		}
	}

	out.Gate = metrics.Combine(sinks...)
	return out, nil
}
