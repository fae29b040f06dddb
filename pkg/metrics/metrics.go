// Package metrics holds the Prometheus collectors for the sync engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatcher
	SyncOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribsync_sync_outcomes_total",
			Help: "Sync requests by terminal outcome and reason",
		},
		[]string{"reason", "outcome"}, // succeeded, skipped, duplicate, failed, invalid
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contribsync_sync_duration_seconds",
			Help:    "Duration of dispatched syncs in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"reason"},
	)

	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribsync_fetch_attempts_total",
			Help: "Calls to the activity fetcher by result",
		},
		[]string{"result"}, // ok, transient, permanent, rejected
	)

	ThrottleDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribsync_throttle_decisions_total",
			Help: "Throttle decisions by reason and result",
		},
		[]string{"reason", "result"}, // allowed, bootstrap, throttled
	)

	// Activity cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contribsync_activity_cache_hits_total",
			Help: "Activity cache reads that returned a fresh entry",
		},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribsync_activity_cache_misses_total",
			Help: "Activity cache reads that returned no entry",
		},
		[]string{"cause"}, // absent, stale
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribsync_activity_cache_errors_total",
			Help: "Activity cache store failures",
		},
		[]string{"op"}, // get, set
	)

	// Upstream guard
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contribsync_fetch_breaker_state",
			Help: "Fetch circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	RateLimitWaits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contribsync_fetch_rate_wait_seconds",
			Help:    "Time spent waiting on the upstream rate budget",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		},
	)

	// Intake and workers
	IntakeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribsync_intake_events_total",
			Help: "Trigger events consumed from the intake bus",
		},
		[]string{"result"}, // queued, duplicate, invalid, error
	)

	// Events backfill
	BackfillEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribsync_backfill_events_total",
			Help: "Repository events seen by the backfill",
		},
		[]string{"result"}, // fetched, inserted
	)
)

// RecordSyncOutcome records the terminal outcome of a dispatched request
func RecordSyncOutcome(reason, outcome string, duration time.Duration) {
	SyncOutcomes.WithLabelValues(reason, outcome).Inc()
	SyncDuration.WithLabelValues(reason).Observe(duration.Seconds())
}

// RecordFetch records one fetcher call
func RecordFetch(result string) {
	FetchAttempts.WithLabelValues(result).Inc()
}

// RecordThrottleDecision records the result of a throttle check
func RecordThrottleDecision(reason string, allowed, bootstrap bool) {
	result := "throttled"
	switch {
	case bootstrap:
		result = "bootstrap"
	case allowed:
		result = "allowed"
	}
	ThrottleDecisions.WithLabelValues(reason, result).Inc()
}

// RecordCacheHit records a fresh activity cache read
func RecordCacheHit() {
	CacheHits.Inc()
}

// RecordCacheMiss records an activity cache miss
func RecordCacheMiss(stale bool) {
	cause := "absent"
	if stale {
		cause = "stale"
	}
	CacheMisses.WithLabelValues(cause).Inc()
}

// RecordCacheError records a failed cache read or write
func RecordCacheError(op string) {
	CacheErrors.WithLabelValues(op).Inc()
}

// SetBreakerState publishes the breaker state as a number
func SetBreakerState(state int) {
	BreakerState.Set(float64(state))
}

// RecordRateLimitWait records time spent in the rate limiter
func RecordRateLimitWait(d time.Duration) {
	RateLimitWaits.Observe(d.Seconds())
}

// RecordIntake records an intake bus event
func RecordIntake(result string) {
	IntakeEvents.WithLabelValues(result).Inc()
}

// RecordBackfill adds to the backfill event counters
func RecordBackfill(fetched, inserted int) {
	BackfillEvents.WithLabelValues("fetched").Add(float64(fetched))
	BackfillEvents.WithLabelValues("inserted").Add(float64(inserted))
}
