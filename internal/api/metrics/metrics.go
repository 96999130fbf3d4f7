// Package metrics defines and registers all custom Prometheus metrics for the
// luncheon member API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// via promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "luncheon"

// ── Reconciler metrics ────────────────────────────────────────────────────────

// ProfileFetchesTotal counts calls to the profile backend.
// Label:
//   - outcome: "success", "not_found", "created", "error"
var ProfileFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_fetches_total",
		Help:      "Total number of profile backend calls, by outcome.",
	},
	[]string{"outcome"},
)

// ProfileCacheTotal counts cache lookups during resolution.
// Label:
//   - result: "hit" (fresh entry served, no fetch) or "miss"
var ProfileCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_total",
		Help:      "Total number of profile cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ProfileFetchRetriesTotal counts scheduled retries after transient failures.
var ProfileFetchRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_fetch_retries_total",
		Help:      "Total number of profile fetch retries after transient failures.",
	},
)

// DegradedFallbacksTotal counts resolutions that exhausted the retry budget
// and fell back to a session-derived profile.
var DegradedFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degraded_fallbacks_total",
		Help:      "Total number of resolutions that ended in a degraded fallback profile.",
	},
)

// ReconcileRunsTotal counts pipeline runs by the event that triggered them.
// Label:
//   - trigger: "signed_in", "token_refreshed", "resolve", "refresh"
var ReconcileRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_runs_total",
		Help:      "Total number of reconciliation pipeline runs, by trigger.",
	},
	[]string{"trigger"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// SignInsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", "unconfirmed", "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ResendThrottledTotal counts confirmation resend requests rejected by the
// per-address cooldown.
var ResendThrottledTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resend_throttled_total",
		Help:      "Total number of confirmation resends rejected by the cooldown.",
	},
)
