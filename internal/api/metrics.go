package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	requests             *prometheus.CounterVec
	duration             *prometheus.HistogramVec
	connectivityFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_client_requests_total",
				Help: "Requests sent to the task backend, by status code and method",
			},
			[]string{"code", "method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todo_client_request_duration_seconds",
				Help:    "Latency of requests sent to the task backend",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		connectivityFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_client_connectivity_failures_total",
				Help: "Requests that never got a response from the task backend",
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(m.requests, m.duration, m.connectivityFailures)
	return m
}

func (m *Metrics) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(m.requests,
		promhttp.InstrumentRoundTripperDuration(m.duration, next))
}
