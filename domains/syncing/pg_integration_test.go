//go:build integration

package syncing

import (
	"context"
	"testing"
	"time"

	"github.com/gomantics/contribsync/db"
	"github.com/gomantics/contribsync/domains/activitycache"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/gomantics/contribsync/domains/throttle"
	"github.com/gomantics/contribsync/internal/testinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func connect(t *testing.T) context.Context {
	t.Helper()
	dsn := testinfra.StartPostgres(t)

	ctx := context.Background()
	require.NoError(t, db.Connect(ctx, zap.NewNop(), dsn))
	t.Cleanup(db.Close)
	return ctx
}

func TestPostgres_DispatchEndToEnd(t *testing.T) {
	ctx := connect(t)

	repo, err := repos.Create(ctx, repos.CreateParams{Owner: "acme", Name: "widgets"})
	require.NoError(t, err)

	_, err = repos.Create(ctx, repos.CreateParams{Owner: "acme", Name: "widgets"})
	require.ErrorIs(t, err, repos.ErrAlreadyExists)

	cache := activitycache.New(zap.NewNop(), activitycache.PGStore{}, 0)
	d := NewDispatcher(zap.NewNop(), Deps{
		Repos:   repos.Store{},
		Ledger:  PGLedger{},
		Fetcher: &scriptedFetcher{},
		Cache:   cache,
		Policy:  func() *throttle.Policy { return throttle.NewPolicy(nil, 0) },
	}, Settings{MaxAttempts: 2, InitialBackoff: time.Millisecond, FetchTimeout: time.Second})

	payload := []byte(`{"repositoryId":"` + repo.ID + `","jobId":"pg-job-1"}`)

	res, err := d.Dispatch(ctx, syncreq.SourceManual, payload)
	require.NoError(t, err)
	require.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.True(t, res.Decision.Bootstrap)

	res, err = d.Dispatch(ctx, syncreq.SourceManual, payload)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)

	job, err := PGLedger{}.Get(ctx, "pg-job-1")
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, job.State)
	assert.Equal(t, 1, job.Attempts)
	require.NotNil(t, job.CompletedAt)

	last, ok, err := PGLedger{}.LastSucceeded(ctx, repo.ID, "manual")
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, *job.CompletedAt, last, time.Second)

	_, ok, err = PGLedger{}.LastSucceeded(ctx, repo.ID, "scheduled")
	require.NoError(t, err)
	assert.False(t, ok)

	entry, fresh, err := cache.Get(ctx, "acme/widgets")
	require.NoError(t, err)
	require.True(t, fresh)
	assert.Contains(t, string(entry.Payload), repo.ID)

	synced, err := repos.GetByID(ctx, repo.ID)
	require.NoError(t, err)
	assert.Equal(t, repos.StatusReady, synced.Status)
	assert.True(t, synced.HasCompleteData)
	assert.Equal(t, int64(4), synced.Counts.Commits)
	assert.NotNil(t, synced.LastSyncedAt)
}

func TestPostgres_QueueClaimsByPriority(t *testing.T) {
	ctx := connect(t)
	ledger := PGLedger{}

	low, err := syncreq.Normalize(syncreq.SourceScheduled, []byte(`{"repositoryId":"r1","jobId":"low"}`))
	require.NoError(t, err)
	high, err := syncreq.Normalize(syncreq.SourceManual, []byte(`{"repositoryId":"r1","jobId":"high"}`))
	require.NoError(t, err)

	for _, req := range []syncreq.Request{low, high} {
		queued, err := ledger.Enqueue(ctx, req)
		require.NoError(t, err)
		require.True(t, queued)
	}

	queued, err := ledger.Enqueue(ctx, low)
	require.NoError(t, err)
	assert.False(t, queued, "jobId already known")

	first, err := ledger.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, "high", first.JobID)
	assert.Equal(t, StateReceived, first.State)

	second, err := ledger.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, "low", second.JobID)

	_, err = ledger.Claim(ctx)
	require.ErrorIs(t, err, ErrNoJob)

	begun, err := ledger.Begin(ctx, high)
	require.NoError(t, err)
	assert.True(t, begun, "a claimed job can be begun once")

	begun, err = ledger.Begin(ctx, high)
	require.NoError(t, err)
	assert.False(t, begun)

	require.NoError(t, ledger.Transition(ctx, "high", StateFailed, 3, "upstream 502"))
	begun, err = ledger.Begin(ctx, high)
	require.NoError(t, err)
	assert.True(t, begun, "failed jobs may be re-run")

	job, err := ledger.Get(ctx, "high")
	require.NoError(t, err)
	assert.Equal(t, StateNormalized, job.State)
	assert.Zero(t, job.Attempts)
	assert.Empty(t, job.Error)

	_, err = ledger.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestPostgres_ClaimReclaimsStalledJobs(t *testing.T) {
	ctx := connect(t)
	ledger := PGLedger{ReclaimAfter: time.Second}

	req, err := syncreq.Normalize(syncreq.SourceManual, []byte(`{"repositoryId":"r1","jobId":"stalled"}`))
	require.NoError(t, err)
	_, err = ledger.Enqueue(ctx, req)
	require.NoError(t, err)

	_, err = ledger.Claim(ctx)
	require.NoError(t, err)
	begun, err := ledger.Begin(ctx, req)
	require.NoError(t, err)
	require.True(t, begun)
	require.NoError(t, ledger.Transition(ctx, "stalled", StateFetching, 1, ""))

	_, err = ledger.Claim(ctx)
	require.ErrorIs(t, err, ErrNoJob, "a job in flight is not handed out again")

	time.Sleep(2 * time.Second)

	job, err := ledger.Claim(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stalled", job.JobID)
	assert.Equal(t, StateReceived, job.State)

	begun, err = ledger.Begin(ctx, req)
	require.NoError(t, err)
	assert.True(t, begun)
}
