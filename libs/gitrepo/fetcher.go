package gitrepo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Fetcher is the external fetch collaborator. Errors wrapped with Permanent
// are not worth retrying; anything else is transient.
type Fetcher interface {
	FetchActivity(ctx context.Context, repositoryID string, days, maxItems int) (*ActivitySnapshot, error)
}

// Locator resolves a repository id to its owner and name.
type Locator interface {
	Locate(ctx context.Context, repositoryID string) (owner, name string, err error)
}

// GitFetcher reads activity from an in-memory clone of the repository.
type GitFetcher struct {
	l        *zap.Logger
	provider Provider
	locator  Locator
	now      func() time.Time
}

func NewGitFetcher(l *zap.Logger, provider Provider, locator Locator) *GitFetcher {
	return &GitFetcher{
		l:        l.Named("gitfetcher"),
		provider: provider,
		locator:  locator,
		now:      time.Now,
	}
}

func (f *GitFetcher) FetchActivity(ctx context.Context, repositoryID string, days, maxItems int) (*ActivitySnapshot, error) {
	if days <= 0 || maxItems <= 0 {
		return nil, Permanent(fmt.Errorf("invalid fetch window: days=%d maxItems=%d", days, maxItems))
	}

	owner, name, err := f.locator.Locate(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("locate %s: %w", repositoryID, err)
	}

	now := f.now().UTC()
	since := now.AddDate(0, 0, -days)

	l := f.l.With(zap.String("repo", owner+"/"+name), zap.Int("days", days))

	snap := &ActivitySnapshot{
		Since:        since,
		Commits:      []Commit{},
		PullRequests: []PullRequest{},
		Contributors: []Contributor{},
	}

	repo, err := Clone(ctx, l, f.provider, owner, name)
	switch {
	case isEmptyRemote(err):
		l.Info("remote repository is empty")
	case err != nil:
		return nil, err
	default:
		if snap, err = collectActivity(repo, since, maxItems); err != nil {
			return nil, err
		}
	}

	snap.RepositoryID = repositoryID
	snap.Repository = owner + "/" + name
	snap.FetchedAt = now

	l.Debug("fetched activity",
		zap.Int("commits", snap.Totals.Commits),
		zap.Int("pull_requests", snap.Totals.PullRequests),
		zap.Int("contributors", snap.Totals.Contributors),
	)
	return snap, nil
}
