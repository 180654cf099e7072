package muxtree

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "muxtree"

// metrics contains the Prometheus metrics of a router. A nil *metrics records nothing.
type metrics struct {
	lookups            *prometheus.CounterVec
	routes             prometheus.Gauge
	registrationErrors prometheus.Counter
	byStatus           [3]prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "lookups_total",
				Help:      "Total number of route lookups by status",
			},
			[]string{"status"},
		),
		routes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "routes",
				Help:      "Number of registered routes",
			},
		),
		registrationErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "registration_errors_total",
				Help:      "Total number of rejected route registrations",
			},
		),
	}

	collectors := []prometheus.Collector{m.lookups, m.routes, m.registrationErrors}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			// Leave the registerer as it was, so that a retry is possible.
			for _, registered := range collectors[:i] {
				reg.Unregister(registered)
			}
			return nil, fmt.Errorf("%w: cannot register router metrics: %w", ErrInvalidConfig, err)
		}
	}

	// Resolve the labelled counters once, lookups are on the hot path.
	for _, s := range []Status{NotFound, Matched, MethodNotAllowed} {
		m.byStatus[s] = m.lookups.WithLabelValues(s.String())
	}

	return m, nil
}

func (m *metrics) observe(s Status) {
	if m == nil {
		return
	}
	m.byStatus[s].Inc()
}

func (m *metrics) setRoutes(n int) {
	if m == nil {
		return
	}
	m.routes.Set(float64(n))
}

func (m *metrics) registrationFailed() {
	if m == nil {
		return
	}
	m.registrationErrors.Inc()
}
