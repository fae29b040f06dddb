package gitrepo

import (
	"context"
	"errors"
	"time"

	"github.com/gomantics/contribsync/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// GuardSettings configure the upstream rate budget and circuit breaker.
type GuardSettings struct {
	RequestsPerHour  float64
	Burst            int
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// Guarded wraps a Fetcher with a token-bucket rate budget and a circuit
// breaker. Permanent errors do not count as breaker failures.
type Guarded struct {
	l       *zap.Logger
	next    Fetcher
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*ActivitySnapshot]
}

func NewGuarded(l *zap.Logger, next Fetcher, s GuardSettings) *Guarded {
	if s.RequestsPerHour <= 0 {
		s.RequestsPerHour = 4500
	}
	if s.Burst <= 0 {
		s.Burst = 1
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}

	g := &Guarded{
		l:       l.Named("fetchguard"),
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(s.RequestsPerHour/3600), s.Burst),
	}

	g.cb = gobreaker.NewCircuitBreaker[*ActivitySnapshot](gobreaker.Settings{
		Name:        "activity-fetch",
		MaxRequests: 1,
		Timeout:     s.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.l.Warn("fetch circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerState(int(to))
		},
	})
	return g
}

func (g *Guarded) FetchActivity(ctx context.Context, repositoryID string, days, maxItems int) (*ActivitySnapshot, error) {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	metrics.RecordRateLimitWait(time.Since(start))

	snap, err := g.cb.Execute(func() (*ActivitySnapshot, error) {
		return g.next.FetchActivity(ctx, repositoryID, days, maxItems)
	})

	switch {
	case err == nil:
		metrics.RecordFetch("ok")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordFetch("rejected")
	case IsTransient(err):
		metrics.RecordFetch("transient")
	default:
		metrics.RecordFetch("permanent")
	}
	return snap, err
}

// State returns the breaker state name.
func (g *Guarded) State() string {
	return g.cb.State().String()
}
