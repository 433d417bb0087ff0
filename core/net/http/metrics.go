package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client-side request collectors
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fetchapi",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests that received a response, by status code and method.",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fetchapi",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time until response headers were received.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

// Instrument wraps next so every request it executes is observed
func (m *Metrics) Instrument(next Doer) Doer {
	var rt http.RoundTripper = promhttp.RoundTripperFunc(next.Do)
	rt = promhttp.InstrumentRoundTripperDuration(m.duration, rt)
	rt = promhttp.InstrumentRoundTripperCounter(m.requests, rt)
	return DoerFunc(rt.RoundTrip)
}

// Collectors returns the collectors for registration with a custom registry
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.duration}
}
