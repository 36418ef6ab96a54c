// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Edit outcome labels for JobTypeEditsTotal.
const (
	EditOutcomeOK       = "ok"
	EditOutcomeNotFound = "not_found"
	EditOutcomeInvalid  = "invalid"
	EditOutcomeConflict = "conflict"
	EditOutcomeError    = "error"
)

var (
	// HttpRequestsTotal counts HTTP requests by route pattern, method and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of http requests handled by the service.",
		},
		[]string{"path", "method", "code"},
	)

	// JobTypeEditsTotal counts job type edits by outcome.
	JobTypeEditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_type_edits_total",
			Help: "Total number of job type edit attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)
