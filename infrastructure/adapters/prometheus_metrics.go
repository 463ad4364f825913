package adapters

import (
	"net/http"
	"time"
	"weaveit-pipeline/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusMetrics struct {
	registry *prometheus.Registry

	jobsStarted   *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		registry: registry,
		jobsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_jobs_started_total",
				Help: "Content generation jobs started",
			},
			[]string{"output_type"},
		),
		jobsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_jobs_finished_total",
				Help: "Content generation jobs finished, by terminal state",
			},
			[]string{"output_type", "state"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "content_stage_duration_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 12),
			},
			[]string{"stage", "output_type", "outcome"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (m *PrometheusMetrics) JobStarted(outputType domain.OutputType) {
	m.jobsStarted.WithLabelValues(string(outputType)).Inc()
}

func (m *PrometheusMetrics) JobFinished(outputType domain.OutputType, state domain.JobState) {
	m.jobsFinished.WithLabelValues(string(outputType), string(state)).Inc()
}

func (m *PrometheusMetrics) ObserveStage(stage domain.JobState, outputType domain.OutputType, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.stageDuration.WithLabelValues(string(stage), string(outputType), outcome).Observe(elapsed.Seconds())
}

func (m *PrometheusMetrics) RecordHTTPRequest(method, path, status string, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
