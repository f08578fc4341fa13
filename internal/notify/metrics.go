package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the notification poller.
type Metrics struct {
	// Count is the latest badge count per kind.
	Count *prometheus.GaugeVec

	// PollErrors is the total number of failed fetches.
	PollErrors prometheus.Counter

	// LastSuccess is the unix time of the last successful fetch.
	LastSuccess prometheus.Gauge
}

// NewMetrics creates poller metrics and registers them with reg.
// A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Count: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bigdeal",
				Name:      "notification_count",
				Help:      "Latest notification badge count by kind",
			},
			[]string{"kind"},
		),

		PollErrors: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "bigdeal",
				Name:      "notification_poll_errors_total",
				Help:      "Total number of failed notification count fetches",
			},
		),

		LastSuccess: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "bigdeal",
				Name:      "notification_last_success_timestamp_seconds",
				Help:      "Unix time of the last successful notification fetch",
			},
		),
	}
}

func (m *Metrics) observe(c Counts, unix float64) {
	for kind, n := range c.byKind() {
		m.Count.WithLabelValues(kind).Set(float64(n))
	}
	m.LastSuccess.Set(unix)
}
