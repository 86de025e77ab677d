// Package metrics defines and registers all custom Prometheus metrics for the
// session gateway. It is the single source of truth for metric names, labels,
// and help strings. Metrics self-register with the default registry via
// promauto at import time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "session_gateway"

// ── Session resolution metrics ────────────────────────────────────────────────

// SessionResolutionsTotal counts completed session resolutions.
// Label:
//   - outcome: "authenticated", "anonymous", "loading", or "error"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// FallbackProfilesTotal counts resolutions that had to synthesize a display
// profile from the email address because the nested influencer profile was
// missing upstream. A rising rate points at a data-quality problem at the
// source, not at the gateway.
var FallbackProfilesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallback_profiles_total",
		Help:      "Total number of influencer profiles synthesized from the email local part.",
	},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts guard outcomes.
// Labels:
//   - guard: "auth", "profile", or "role"
//   - decision: "allow", "loading", "redirect", or "deny"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of guard decisions, by guard and decision kind.",
	},
	[]string{"guard", "decision"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls to the marketplace API.
// Labels:
//   - endpoint: "identity", "profile", or "influencer_profile"
//   - result: "ok", "unauthenticated", "not_found", "transient", or "unexpected"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of upstream API requests, by endpoint and result.",
	},
	[]string{"endpoint", "result"},
)

// UpstreamRequestDuration measures upstream call latency, retries included.
// Label:
//   - endpoint: "identity", "profile", or "influencer_profile"
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream API requests including retry attempts.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"endpoint"},
)

// ── Query cache metrics ───────────────────────────────────────────────────────

// QueryCacheTotal counts query cache lookups.
// Label:
//   - result: "hit", "stale", "miss", "negative", or "shared_hit"
var QueryCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_total",
		Help:      "Total number of query cache lookups, by result.",
	},
	[]string{"result"},
)
