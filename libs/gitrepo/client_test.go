package gitrepo

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type testRepo struct {
	t    *testing.T
	repo *git.Repository
	wt   *git.Worktree
	fs   billy.Filesystem
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	fs := memfs.New()
	repo, err := git.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, repo: repo, wt: wt, fs: fs}
}

func (r *testRepo) commit(file, content, msg, author string, age time.Duration) {
	r.t.Helper()
	require.NoError(r.t, util.WriteFile(r.fs, file, []byte(content), 0o644))
	_, err := r.wt.Add(file)
	require.NoError(r.t, err)
	_, err = r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: author + "@example.com",
			When:  testNow.Add(-age),
		},
	})
	require.NoError(r.t, err)
}

func seededRepo(t *testing.T) *git.Repository {
	r := newTestRepo(t)
	day := 24 * time.Hour
	r.commit("a.txt", "one\n", "initial", "alice", 30*day)
	r.commit("a.txt", "one\ntwo\nthree\n", "Add parser (#12)", "bob", 3*day)
	r.commit("b.txt", "x\ny\n", "Merge pull request #15 from bob/feature\n\nSupport widgets", "alice", 2*day)
	r.commit("a.txt", "one\n", "trim\n\nremove lines", "alice", day)
	return r.repo
}

func TestCollectActivity(t *testing.T) {
	repo := seededRepo(t)

	snap, err := collectActivity(repo, testNow.AddDate(0, 0, -7), 50)
	require.NoError(t, err)

	assert.Equal(t, Totals{Commits: 3, PullRequests: 2, Contributors: 2}, snap.Totals)

	require.Len(t, snap.Commits, 3)
	assert.Equal(t, "trim", snap.Commits[0].Message)
	assert.Equal(t, int64(0), snap.Commits[0].Additions)
	assert.Equal(t, int64(2), snap.Commits[0].Deletions)

	require.Len(t, snap.PullRequests, 2)
	assert.Equal(t, PullRequest{
		Number:    15,
		Title:     "Support widgets",
		Author:    "alice",
		Additions: 2,
		MergedAt:  testNow.Add(-48 * time.Hour),
	}, snap.PullRequests[0])
	assert.Equal(t, int64(12), snap.PullRequests[1].Number)
	assert.Equal(t, "Add parser", snap.PullRequests[1].Title)
	assert.Equal(t, int64(2), snap.PullRequests[1].Additions)

	require.Len(t, snap.Contributors, 2)
	assert.Equal(t, "alice", snap.Contributors[0].Name)
	assert.Equal(t, 2, snap.Contributors[0].Commits)
	assert.Equal(t, "bob", snap.Contributors[1].Name)
}

func TestCollectActivity_MaxItemsCapsListsNotTotals(t *testing.T) {
	repo := seededRepo(t)

	snap, err := collectActivity(repo, testNow.AddDate(0, 0, -7), 1)
	require.NoError(t, err)

	assert.Len(t, snap.Commits, 1)
	assert.Len(t, snap.PullRequests, 1)
	assert.Len(t, snap.Contributors, 1)
	assert.Equal(t, Totals{Commits: 3, PullRequests: 2, Contributors: 2}, snap.Totals)
}

func TestCollectActivity_WindowExcludesOldCommits(t *testing.T) {
	repo := seededRepo(t)

	snap, err := collectActivity(repo, testNow.Add(-36*time.Hour), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Totals.Commits)
	assert.Empty(t, snap.PullRequests)
}

func TestCollectActivity_EmptyRepository(t *testing.T) {
	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)

	snap, err := collectActivity(repo, testNow.AddDate(0, 0, -7), 50)
	require.NoError(t, err)
	assert.Zero(t, snap.Totals)
	assert.NotNil(t, snap.Commits)
}

func TestParsePullRequest(t *testing.T) {
	tests := []struct {
		message string
		number  int64
		title   string
		ok      bool
	}{
		{"Merge pull request #7 from acme/fix\n\nFix the thing", 7, "Fix the thing", true},
		{"Merge pull request #8 from acme/fix", 8, "Merge pull request #8 from acme/fix", true},
		{"Add retries (#123)", 123, "Add retries", true},
		{"Add retries (#123)\n\n* squashed commit", 123, "Add retries", true},
		{"Merge branch 'main' into feature", 0, "", false},
		{"Refer to #42 in docs", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			number, title, ok := parsePullRequest(tt.message)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.number, number)
			assert.Equal(t, tt.title, title)
		})
	}
}
