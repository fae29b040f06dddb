package gitrepo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFetcher struct {
	calls atomic.Int32
	err   error
}

func (s *stubFetcher) FetchActivity(_ context.Context, repositoryID string, _, _ int) (*ActivitySnapshot, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &ActivitySnapshot{RepositoryID: repositoryID}, nil
}

func fastGuard(next Fetcher) *Guarded {
	return NewGuarded(zap.NewNop(), next, GuardSettings{
		RequestsPerHour:  3_600_000,
		Burst:            100,
		FailureThreshold: 2,
		BreakerTimeout:   time.Minute,
	})
}

func TestGuarded_PassesThrough(t *testing.T) {
	stub := &stubFetcher{}
	g := fastGuard(stub)

	snap, err := g.FetchActivity(context.Background(), "r1", 7, 50)
	require.NoError(t, err)
	assert.Equal(t, "r1", snap.RepositoryID)
	assert.Equal(t, int32(1), stub.calls.Load())
	assert.Equal(t, "closed", g.State())
}

func TestGuarded_OpensOnTransientFailures(t *testing.T) {
	stub := &stubFetcher{err: errors.New("connection refused")}
	g := fastGuard(stub)
	ctx := context.Background()

	for range 2 {
		_, err := g.FetchActivity(ctx, "r1", 7, 50)
		require.Error(t, err)
	}
	assert.Equal(t, "open", g.State())

	_, err := g.FetchActivity(ctx, "r1", 7, 50)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, IsTransient(err), "an open breaker is retryable later")
	assert.Equal(t, int32(2), stub.calls.Load())
}

func TestGuarded_PermanentErrorsDoNotTrip(t *testing.T) {
	stub := &stubFetcher{err: Permanent(errors.New("repository not found"))}
	g := fastGuard(stub)

	for range 5 {
		_, err := g.FetchActivity(context.Background(), "r1", 7, 50)
		require.Error(t, err)
		assert.False(t, IsTransient(err))
	}
	assert.Equal(t, "closed", g.State())
	assert.Equal(t, int32(5), stub.calls.Load())
}

func TestGuarded_CanceledContext(t *testing.T) {
	g := NewGuarded(zap.NewNop(), &stubFetcher{}, GuardSettings{RequestsPerHour: 1, Burst: 1})
	ctx, cancel := context.WithCancel(context.Background())

	_, err := g.FetchActivity(ctx, "r1", 7, 50)
	require.NoError(t, err)

	cancel()
	_, err = g.FetchActivity(ctx, "r1", 7, 50)
	assert.Error(t, err)
}
