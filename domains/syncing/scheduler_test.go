package syncing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSubmitter struct {
	mu   sync.Mutex
	reqs []syncreq.Request
	fail map[string]bool
}

func (s *recordingSubmitter) Submit(_ context.Context, source syncreq.Source, payload []byte) (syncreq.Request, error) {
	req, err := syncreq.Normalize(source, payload)
	if err != nil {
		return syncreq.Request{}, err
	}
	if s.fail[req.RepositoryID] {
		return syncreq.Request{}, errors.New("bus closed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return req, nil
}

func (s *recordingSubmitter) submitted() []syncreq.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]syncreq.Request(nil), s.reqs...)
}

type failingLister struct{}

func (failingLister) ListAll(context.Context) ([]repos.Repo, error) {
	return nil, errors.New("db down")
}

func TestScheduler_Tick(t *testing.T) {
	lister := newMemRepos(newRepo("alpha", time.Hour, true), newRepo("beta", time.Hour, true))
	sub := &recordingSubmitter{}
	s := NewScheduler(zap.NewNop(), lister, sub, time.Hour)

	assert.Equal(t, 2, s.Tick(context.Background()))

	got := sub.submitted()
	require.Len(t, got, 2)
	for _, req := range got {
		assert.Equal(t, syncreq.ReasonScheduled, req.Reason)
		assert.Equal(t, syncreq.PriorityLow, req.Priority)
		assert.Equal(t, syncreq.DefaultDays, req.Days)
		assert.NotEmpty(t, req.JobID)
	}
	assert.NotEqual(t, got[0].JobID, got[1].JobID)
}

func TestScheduler_TickSkipsFailedSubmits(t *testing.T) {
	lister := newMemRepos(newRepo("alpha", time.Hour, true), newRepo("beta", time.Hour, true))
	sub := &recordingSubmitter{fail: map[string]bool{"alpha": true}}
	s := NewScheduler(zap.NewNop(), lister, sub, time.Hour)

	assert.Equal(t, 1, s.Tick(context.Background()))
	require.Len(t, sub.submitted(), 1)
	assert.Equal(t, "beta", sub.submitted()[0].RepositoryID)
}

func TestScheduler_TickListError(t *testing.T) {
	sub := &recordingSubmitter{}
	s := NewScheduler(zap.NewNop(), failingLister{}, sub, time.Hour)
	assert.Zero(t, s.Tick(context.Background()))
	assert.Empty(t, sub.submitted())
}

func TestScheduler_StartStop(t *testing.T) {
	lister := newMemRepos(newRepo("alpha", time.Hour, true))
	sub := &recordingSubmitter{}
	s := NewScheduler(zap.NewNop(), lister, sub, 5*time.Millisecond)

	s.Start()
	require.Eventually(t, func() bool { return len(sub.submitted()) >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestScheduler_NonPositiveIntervalUsesDefault(t *testing.T) {
	s := NewScheduler(zap.NewNop(), newMemRepos(), &recordingSubmitter{}, -time.Second)
	assert.Equal(t, DefaultScheduleInterval, s.interval)

	s.Start()
	s.Stop()
}
