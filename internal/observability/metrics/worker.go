package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	findingsEmitted prometheus.Counter
	rejectionsTotal prometheus.Counter
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gex",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gex",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document extraction duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gex",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document extractions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	findingsEmitted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gex",
			Subsystem: "worker",
			Name:      "vulnerabilities_emitted_total",
			Help:      "Consolidated vulnerabilities emitted across documents.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	rejectionsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "gex",
			Subsystem: "worker",
			Name:      "validation_rejections_total",
			Help:      "Findings, options and sources dropped by validation.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, findingsEmitted, rejectionsTotal)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		findingsEmitted: findingsEmitted,
		rejectionsTotal: rejectionsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveResult(vulnerabilities, rejections int) {
	if vulnerabilities > 0 {
		m.findingsEmitted.Add(float64(vulnerabilities))
	}
	if rejections > 0 {
		m.rejectionsTotal.Add(float64(rejections))
	}
}
