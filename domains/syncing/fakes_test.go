package syncing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/gomantics/contribsync/libs/gitrepo"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type memRepos struct {
	mu     sync.Mutex
	repos  map[string]*repos.Repo
	failed map[string]string
	getErr error
}

func newMemRepos(rs ...*repos.Repo) *memRepos {
	m := &memRepos{repos: map[string]*repos.Repo{}, failed: map[string]string{}}
	for _, r := range rs {
		m.repos[r.ID] = r
	}
	return m
}

func (m *memRepos) Get(_ context.Context, id string) (*repos.Repo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.repos[id]
	if !ok {
		return nil, repos.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepos) ListAll(context.Context) ([]repos.Repo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repos.Repo, 0, len(m.repos))
	for _, r := range m.repos {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memRepos) MarkSyncing(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos[id].Status = repos.StatusSyncing
	return nil
}

func (m *memRepos) MarkSynced(_ context.Context, id string, p repos.SyncedParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.repos[id]
	r.Status = repos.StatusReady
	r.LastSyncedAt = &p.SyncedAt
	r.Counts = p.Counts
	r.HasCompleteData = p.Complete
	return nil
}

func (m *memRepos) MarkFailed(_ context.Context, id string, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos[id].Status = repos.StatusError
	m.failed[id] = msg
	return nil
}

func (m *memRepos) Restore(_ context.Context, id string, status repos.Status, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repos[id].Status = status
	m.repos[id].Error = msg
	return nil
}

func (m *memRepos) repo(id string) repos.Repo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.repos[id]
}

// memLedger mirrors the sync_jobs semantics in memory.
type memLedger struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	order     []string
	history   map[string][]State
	succeeded map[string]time.Time
	now       func() time.Time
}

func newMemLedger() *memLedger {
	return &memLedger{
		jobs:      map[string]*Job{},
		history:   map[string][]State{},
		succeeded: map[string]time.Time{},
		now:       func() time.Time { return testNow },
	}
}

func (m *memLedger) Begin(_ context.Context, req syncreq.Request) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[req.JobID]; ok {
		switch j.State {
		case StateQueued, StateReceived, StateFailed:
		default:
			return false, nil
		}
		j.State, j.Attempts, j.Error = StateNormalized, 0, ""
	} else {
		m.jobs[req.JobID] = &Job{JobID: req.JobID, RepositoryID: req.RepositoryID, Reason: req.Reason.String(), State: StateNormalized, Payload: syncreq.MustEncode(req)}
	}
	m.history[req.JobID] = append(m.history[req.JobID], StateNormalized)
	return true, nil
}

func (m *memLedger) Enqueue(_ context.Context, req syncreq.Request) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[req.JobID]; ok {
		return false, nil
	}
	m.jobs[req.JobID] = &Job{JobID: req.JobID, RepositoryID: req.RepositoryID, Reason: req.Reason.String(), State: StateQueued, Payload: syncreq.MustEncode(req)}
	m.order = append(m.order, req.JobID)
	return true, nil
}

func (m *memLedger) Claim(context.Context) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if j := m.jobs[id]; j.State == StateQueued {
			j.State = StateReceived
			m.history[id] = append(m.history[id], StateReceived)
			return *j, nil
		}
	}
	return Job{}, ErrNoJob
}

func (m *memLedger) Transition(_ context.Context, jobID string, state State, attempts int, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[jobID]
	if !ok {
		return errors.New("unknown job")
	}
	j.State, j.Attempts, j.Error = state, attempts, errMsg
	m.history[jobID] = append(m.history[jobID], state)
	if state == StateSucceeded {
		m.succeeded[j.RepositoryID+"|"+j.Reason] = m.now()
	}
	return nil
}

func (m *memLedger) LastSucceeded(_ context.Context, repositoryID, reason string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.succeeded[repositoryID+"|"+reason]
	return t, ok, nil
}

func (m *memLedger) job(id string) Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.jobs[id]
}

func (m *memLedger) states(id string) []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]State(nil), m.history[id]...)
}

func (m *memLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// scriptedFetcher returns errs in order, then succeeds.
type scriptedFetcher struct {
	mu    sync.Mutex
	errs  []error
	calls atomic.Int32
	delay time.Duration
}

func (f *scriptedFetcher) FetchActivity(_ context.Context, repositoryID string, days, maxItems int) (*gitrepo.ActivitySnapshot, error) {
	n := int(f.calls.Add(1))
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= len(f.errs) {
		return nil, f.errs[n-1]
	}
	return &gitrepo.ActivitySnapshot{
		RepositoryID: repositoryID,
		Since:        testNow.AddDate(0, 0, -days),
		FetchedAt:    testNow,
		Totals:       gitrepo.Totals{Commits: 4, PullRequests: 2, Contributors: 1},
		Commits:      []gitrepo.Commit{{SHA: "abc", Author: "alice"}},
		PullRequests: []gitrepo.PullRequest{{Number: 1, Title: "Add thing", Additions: 100}},
		Contributors: []gitrepo.Contributor{{Name: "alice", Commits: 4}},
	}, nil
}

// strictLedger rejects writes on a cancelled context the way a database
// driver does.
type strictLedger struct {
	*memLedger
}

func (s strictLedger) Transition(ctx context.Context, jobID string, state State, attempts int, errMsg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.memLedger.Transition(ctx, jobID, state, attempts, errMsg)
}

// cancellingFetcher cancels the dispatch context mid-fetch and fails with
// the context error.
type cancellingFetcher struct {
	cancel context.CancelFunc
}

func (f cancellingFetcher) FetchActivity(ctx context.Context, _ string, _, _ int) (*gitrepo.ActivitySnapshot, error) {
	f.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

type countingCache struct {
	mu   sync.Mutex
	sets map[string]int
	err  error
}

func (c *countingCache) Set(_ context.Context, key string, _ []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]int{}
	}
	c.sets[key]++
	return c.err
}

func (c *countingCache) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[key]
}
