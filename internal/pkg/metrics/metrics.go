// Package metrics provides Prometheus metrics for the meeting assistant backend.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// trackerRequestsTotal counts calls made to the issue tracker.
	// Labels:
	//   - operation: tracker operation (e.g., "list_issues", "apply_transition")
	//   - outcome: "success" or "failure"
	trackerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetassist",
			Name:      "tracker_requests_total",
			Help:      "Total number of issue tracker calls",
		},
		[]string{"operation", "outcome"},
	)

	// trackerRequestDuration records issue tracker call latency.
	trackerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "meetassist",
			Name:      "tracker_request_duration_seconds",
			Help:      "Duration of issue tracker calls in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	meetingsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meetassist",
			Name:      "meetings_created_total",
			Help:      "Total number of meetings created",
		},
	)

	// snapshotSavesTotal counts explicit store flushes.
	// Labels:
	//   - outcome: "success" or "failure"
	snapshotSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meetassist",
			Name:      "snapshot_saves_total",
			Help:      "Total number of store snapshot saves",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(trackerRequestsTotal)
	prometheus.MustRegister(trackerRequestDuration)
	prometheus.MustRegister(meetingsCreatedTotal)
	prometheus.MustRegister(snapshotSavesTotal)
}

// RecordTrackerCall records one tracker call and its latency.
func RecordTrackerCall(operation string, err error, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	trackerRequestsTotal.WithLabelValues(operation, outcome).Inc()
	trackerRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordMeetingCreated increments the created-meetings counter.
func RecordMeetingCreated() {
	meetingsCreatedTotal.Inc()
}

// RecordSnapshotSave records the outcome of a store flush.
func RecordSnapshotSave(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	snapshotSavesTotal.WithLabelValues(outcome).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
