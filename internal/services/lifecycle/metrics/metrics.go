// Package metrics exposes Prometheus collectors for the lifecycle worker
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}

var (
	// JobsTotal counts finished attempts by kind and outcome
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hellomama_lifecycle_jobs_total",
			Help: "Lifecycle job attempts by record kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// JobDuration measures one processing attempt
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hellomama_lifecycle_job_duration_seconds",
			Help:    "Duration of one lifecycle job attempt in seconds.",
			Buckets: durationBuckets,
		},
		[]string{"kind", "success"},
	)

	// RequestsCreated counts subscription requests written
	RequestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hellomama_subscription_requests_created_total",
			Help: "Subscription requests emitted by record kind.",
		},
		[]string{"kind"},
	)

	// InFlight is the number of jobs being processed
	InFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hellomama_lifecycle_jobs_in_flight",
		Help: "Lifecycle jobs currently being processed.",
	})
)

// Handler serves the default registry
func Handler() http.Handler { return promhttp.Handler() }

// ObserveDuration records one attempt's duration
func ObserveDuration(kind string, success bool, start time.Time) {
	s := "false"
	if success {
		s = "true"
	}
	JobDuration.WithLabelValues(kind, s).Observe(time.Since(start).Seconds())
}
