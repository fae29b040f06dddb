package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSyncOutcome(t *testing.T) {
	c := SyncOutcomes.WithLabelValues("manual", "succeeded")
	before := testutil.ToFloat64(c)

	RecordSyncOutcome("manual", "succeeded", 250*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordThrottleDecision(t *testing.T) {
	tests := []struct {
		allowed, bootstrap bool
		label              string
	}{
		{false, false, "throttled"},
		{true, false, "allowed"},
		{true, true, "bootstrap"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			c := ThrottleDecisions.WithLabelValues("scheduled", tt.label)
			before := testutil.ToFloat64(c)
			RecordThrottleDecision("scheduled", tt.allowed, tt.bootstrap)
			assert.Equal(t, before+1, testutil.ToFloat64(c))
		})
	}
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits)
	stale := testutil.ToFloat64(CacheMisses.WithLabelValues("stale"))
	absent := testutil.ToFloat64(CacheMisses.WithLabelValues("absent"))
	setErrs := testutil.ToFloat64(CacheErrors.WithLabelValues("set"))

	RecordCacheHit()
	RecordCacheMiss(true)
	RecordCacheMiss(false)
	RecordCacheMiss(false)
	RecordCacheError("set")

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHits))
	assert.Equal(t, stale+1, testutil.ToFloat64(CacheMisses.WithLabelValues("stale")))
	assert.Equal(t, absent+2, testutil.ToFloat64(CacheMisses.WithLabelValues("absent")))
	assert.Equal(t, setErrs+1, testutil.ToFloat64(CacheErrors.WithLabelValues("set")))
}

func TestSetBreakerState(t *testing.T) {
	SetBreakerState(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(BreakerState))
	SetBreakerState(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(BreakerState))
}

func TestRecordBackfill(t *testing.T) {
	fetched := testutil.ToFloat64(BackfillEvents.WithLabelValues("fetched"))
	inserted := testutil.ToFloat64(BackfillEvents.WithLabelValues("inserted"))

	RecordBackfill(10, 4)

	assert.Equal(t, fetched+10, testutil.ToFloat64(BackfillEvents.WithLabelValues("fetched")))
	assert.Equal(t, inserted+4, testutil.ToFloat64(BackfillEvents.WithLabelValues("inserted")))
}
