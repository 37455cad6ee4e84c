package services

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certagent/internal/utils"
)

type MetricsService struct {
	config   *utils.Config
	logger   *utils.Logger
	registry *prometheus.Registry

	enrollmentsTotal   *prometheus.CounterVec
	enrollmentDuration prometheus.Histogram
	caAttemptsTotal    *prometheus.CounterVec
	caRetriesTotal     prometheus.Counter
	credentialsStored  prometheus.Gauge
}

func NewMetricsService(config *utils.Config, logger *utils.Logger) *MetricsService {
	ms := &MetricsService{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	ms.initMetrics()
	return ms
}

func (ms *MetricsService) initMetrics() {
	ms.enrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certagent_enrollments_total",
			Help: "Total number of certificate enrollment workflows",
		},
		[]string{"outcome"},
	)

	ms.enrollmentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "certagent_enrollment_duration_seconds",
			Help:    "Duration of certificate enrollment workflows",
			Buckets: prometheus.DefBuckets,
		},
	)

	ms.caAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certagent_ca_attempts_total",
			Help: "Total number of CA signing attempts",
		},
		[]string{"outcome"},
	)

	ms.caRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "certagent_ca_retries_total",
			Help: "Total number of retried CA signing attempts",
		},
	)

	ms.credentialsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "certagent_credentials_stored",
			Help: "Number of credentials currently held in the store",
		},
	)

	ms.registry.MustRegister(
		ms.enrollmentsTotal,
		ms.enrollmentDuration,
		ms.caAttemptsTotal,
		ms.caRetriesTotal,
		ms.credentialsStored,
	)
}

func (ms *MetricsService) RecordEnrollment(outcome string, duration time.Duration) {
	if ms == nil {
		return
	}
	ms.enrollmentsTotal.WithLabelValues(outcome).Inc()
	ms.enrollmentDuration.Observe(duration.Seconds())
}

func (ms *MetricsService) RecordCAAttempt(outcome string) {
	if ms == nil {
		return
	}
	ms.caAttemptsTotal.WithLabelValues(outcome).Inc()
}

func (ms *MetricsService) RecordCARetry() {
	if ms == nil {
		return
	}
	ms.caRetriesTotal.Inc()
}

func (ms *MetricsService) SetStoredCredentials(count int) {
	if ms == nil {
		return
	}
	ms.credentialsStored.Set(float64(count))
}

func (ms *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(ms.registry, promhttp.HandlerOpts{})
}
