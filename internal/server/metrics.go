package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are registered on a per-service registry so tests can build
// several services in one process.
type metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	predictions *prometheus.CounterVec
	probability prometheus.Histogram
	loans       prometheus.Gauge
	subscribers prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanlens_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanlens_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanlens_predictions_total",
				Help: "Predictions served by label",
			},
			[]string{"label"},
		),
		probability: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanlens_prediction_percent",
			Help:    "Distribution of predicted good-loan percentages",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		}),
		loans: f.NewGauge(prometheus.GaugeOpts{
			Name: "loanlens_dataset_loans",
			Help: "Loans in the loaded dataset",
		}),
		subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "loanlens_stream_subscribers",
			Help: "Open prediction event streams",
		}),
	}
}
