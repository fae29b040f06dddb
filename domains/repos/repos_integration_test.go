//go:build integration

package repos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gomantics/contribsync/db"
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

func TestRepos_Lifecycle(t *testing.T) {
	ctx := connect(t)
	s := Store{}

	r, err := s.Create(ctx, CreateParams{Owner: "acme", Name: "widgets"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, r.Status)
	assert.False(t, r.HasCompleteData)

	_, err = s.Create(ctx, CreateParams{Owner: "acme", Name: "widgets"})
	require.ErrorIs(t, err, ErrAlreadyExists)

	found, err := s.FindByName(ctx, "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, r.ID, found.ID)

	owner, name, err := s.Locate(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", owner+"/"+name)

	require.NoError(t, s.MarkSyncing(ctx, r.ID))
	require.NoError(t, s.Restore(ctx, r.ID, StatusPending, ""))
	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	require.Error(t, s.Restore(ctx, r.ID, Status("completed"), ""))

	require.NoError(t, s.MarkSyncing(ctx, r.ID))
	require.NoError(t, s.MarkFailed(ctx, r.ID, "clone failed"))
	got, err = s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "clone failed", got.Error)

	syncedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.MarkSynced(ctx, r.ID, SyncedParams{
		SyncedAt: syncedAt,
		Counts:   ActivityCounts{Commits: 12, PullRequests: 3},
		Complete: true,
	}))
	got, err = s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.LastSyncedAt)
	assert.True(t, got.LastSyncedAt.Equal(syncedAt))
	assert.Equal(t, DataAvailability{
		HasCommits:       true,
		HasPullRequests:  true,
		CommitCount:      12,
		PullRequestCount: 3,
		HasCompleteData:  true,
	}, got.Availability())

	list, err := s.List(ctx, ListParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, s.Delete(ctx, r.ID))
	_, err = s.Get(ctx, r.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, r.ID), ErrNotFound)
}

func TestRepos_ConcurrentCreateResolvesToOneRow(t *testing.T) {
	ctx := connect(t)

	const n = 8
	var (
		wg   sync.WaitGroup
		ids  = make([]string, n)
		errs = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := Create(ctx, CreateParams{Owner: "acme", Name: "racy"})
			errs[i] = err
			if r != nil {
				ids[i] = r.ID
			}
		}()
	}
	wg.Wait()

	created := 0
	for i := range n {
		if errs[i] == nil {
			created++
			continue
		}
		require.ErrorIs(t, errs[i], ErrAlreadyExists)
	}
	assert.Equal(t, 1, created)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	list, err := List(ctx, ListParams{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}
