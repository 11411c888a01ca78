package delegate

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects dispatch and subscription counters on a private registry.
// A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	Sends       *prometheus.CounterVec
	Invocations *prometheus.CounterVec
	Panics      *prometheus.CounterVec
	Listeners   *prometheus.GaugeVec
	PoolHooks   prometheus.Gauge
}

// NewMetrics creates the collectors under namespace and registers them on a new registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		Sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "event_sends_total", Help: "Total Send calls per event",
		}, []string{"event"}),
		Invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "listener_invocations_total", Help: "Total listener calls per event",
		}, []string{"event"}),
		Panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "listener_panics_total", Help: "Total recovered listener panics per event",
		}, []string{"event"}),
		Listeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "event_listeners", Help: "Attached listeners per event name",
		}, []string{"event"}),
		PoolHooks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "pool_hooks", Help: "Hooks held by all pools",
		}),
	}
	reg.MustRegister(m.Sends, m.Invocations, m.Panics, m.Listeners, m.PoolHooks)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) sent(event string, invocations int) {
	if m == nil {
		return
	}
	m.Sends.WithLabelValues(event).Inc()
	m.Invocations.WithLabelValues(event).Add(float64(invocations))
}

func (m *Metrics) panicked(event string) {
	if m == nil {
		return
	}
	m.Panics.WithLabelValues(event).Inc()
}

// listeners moves the gauge by delta, so events sharing a name add up.
func (m *Metrics) listeners(event string, delta int) {
	if m == nil {
		return
	}
	m.Listeners.WithLabelValues(event).Add(float64(delta))
}

func (m *Metrics) hooks(delta int) {
	if m == nil {
		return
	}
	m.PoolHooks.Add(float64(delta))
}
