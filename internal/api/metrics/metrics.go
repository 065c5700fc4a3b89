// Package metrics defines and registers all custom Prometheus metrics for the
// sandwich API. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics register with the default Prometheus registry via promauto at
// package load; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sandwich"

// ── Submission metrics ────────────────────────────────────────────────────────

// SubmissionsCreatedTotal counts successful submissions.
// Label:
//   - type: "RESTAURANT" or "HOMEMADE"
var SubmissionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_created_total",
		Help:      "Total number of sandwiches submitted successfully, by type.",
	},
	[]string{"type"},
)

// SubmissionErrorsTotal counts failed submissions.
// Label:
//   - reason: "validation", "identity", "storage"
var SubmissionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submission_errors_total",
		Help:      "Total number of rejected or failed submissions, by reason.",
	},
	[]string{"reason"},
)

// SubmissionDuration measures a submission end-to-end, from validation
// through the storage transaction.
var SubmissionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_duration_seconds",
		Help:      "Duration of the submission transaction, including identity and restaurant resolution.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Resolution metrics ────────────────────────────────────────────────────────

// IdentityResolvedTotal counts identity resolutions.
// Label:
//   - kind: "authenticated", "anonymous" (fresh placeholder), or
//     "anonymous_reused" (placeholder recovered after a uniqueness race)
var IdentityResolvedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolved_total",
		Help:      "Total number of resolved submission identities, by kind.",
	},
	[]string{"kind"},
)

// RestaurantDedupTotal counts restaurant deduplication decisions.
// Label:
//   - result: "hit" (existing row reused) or "miss" (new row created)
var RestaurantDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "restaurant_dedup_total",
		Help:      "Total number of restaurant name resolutions, by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Discovery metrics ─────────────────────────────────────────────────────────

// DiscoveryQueriesTotal counts discovery queries.
// Label:
//   - sort: "newest", "oldest", or "rating"
var DiscoveryQueriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discovery_queries_total",
		Help:      "Total number of discovery queries served, by requested sort order.",
	},
	[]string{"sort"},
)
