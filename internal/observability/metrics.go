package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	scoringRequestsTotal  *prometheus.CounterVec
	scoringEscalations    *prometheus.CounterVec
	skillLevelChangesInc  prometheus.Counter
	reviewSubmissionsInc  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftfolio_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "craftfolio_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftfolio_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		scoringRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftfolio_scoring_requests_total",
			Help: "Total number of project scoring passes.",
		}, []string{"craft_type"})

		scoringEscalations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftfolio_scoring_escalations_total",
			Help: "Number of scoring results escalated to human review.",
		}, []string{"reason"})

		skillLevelChangesInc = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "craftfolio_skill_level_changes_total",
			Help: "Number of user skill level transitions recorded.",
		})

		reviewSubmissionsInc = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "craftfolio_review_submissions_total",
			Help: "Number of review requests created, by priority.",
		}, []string{"priority"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			scoringRequestsTotal,
			scoringEscalations,
			skillLevelChangesInc,
			reviewSubmissionsInc,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ScoringRequests exposes the counter for scoring passes.
func ScoringRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return scoringRequestsTotal
}

// ScoringEscalations exposes the counter for review escalations.
func ScoringEscalations() *prometheus.CounterVec {
	RegisterMetrics()
	return scoringEscalations
}

// SkillLevelChanges exposes the counter for skill level transitions.
func SkillLevelChanges() prometheus.Counter {
	RegisterMetrics()
	return skillLevelChangesInc
}

// ReviewSubmissions exposes the counter for created review requests.
func ReviewSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewSubmissionsInc
}
