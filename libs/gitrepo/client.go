package gitrepo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.uber.org/zap"
)

var (
	mergePRPattern  = regexp.MustCompile(`^Merge pull request #(\d+) from \S+`)
	squashPRPattern = regexp.MustCompile(`^(.+) \(#(\d+)\)$`)
)

// Clone clones owner/name into memory. The clone is bare and single-branch.
func Clone(ctx context.Context, l *zap.Logger, provider Provider, owner, name string) (*git.Repository, error) {
	url := provider.CloneURL(owner, name)

	l.Debug("cloning repository",
		zap.String("provider", provider.Name()),
		zap.String("url", url),
	)

	opts := &git.CloneOptions{
		URL:          url,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if auth := provider.Auth(); auth != nil {
		opts.Auth = auth
	}

	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", classify(err))
	}
	return repo, nil
}

// collectActivity walks commits newer than since and builds a snapshot.
// Each list is capped at maxItems; Totals are not.
func collectActivity(repo *git.Repository, since time.Time, maxItems int) (*ActivitySnapshot, error) {
	snap := &ActivitySnapshot{
		Since:        since,
		Commits:      []Commit{},
		PullRequests: []PullRequest{},
		Contributors: []Contributor{},
	}

	iter, err := repo.Log(&git.LogOptions{Since: &since, Order: git.LogOrderCommitterTime})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	byEmail := make(map[string]*Contributor)

	err = iter.ForEach(func(c *object.Commit) error {
		snap.Totals.Commits++

		key := strings.ToLower(c.Author.Email)
		if ct, ok := byEmail[key]; ok {
			ct.Commits++
		} else {
			byEmail[key] = &Contributor{Name: c.Author.Name, Email: c.Author.Email, Commits: 1}
		}

		number, title, isPR := parsePullRequest(c.Message)
		if isPR {
			snap.Totals.PullRequests++
		}

		wantCommit := len(snap.Commits) < maxItems
		wantPR := isPR && len(snap.PullRequests) < maxItems
		if !wantCommit && !wantPR {
			return nil
		}

		adds, dels, err := lineStats(c)
		if err != nil {
			return err
		}

		if wantCommit {
			snap.Commits = append(snap.Commits, Commit{
				SHA:         c.Hash.String(),
				Author:      c.Author.Name,
				Email:       c.Author.Email,
				Message:     firstLine(c.Message),
				Additions:   adds,
				Deletions:   dels,
				CommittedAt: c.Committer.When.UTC(),
			})
		}
		if wantPR {
			snap.PullRequests = append(snap.PullRequests, PullRequest{
				Number:    number,
				Title:     title,
				Author:    c.Author.Name,
				Additions: adds,
				Deletions: dels,
				MergedAt:  c.Committer.When.UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk log: %w", err)
	}

	for _, ct := range byEmail {
		snap.Contributors = append(snap.Contributors, *ct)
	}
	slices.SortFunc(snap.Contributors, func(a, b Contributor) int {
		return cmp.Or(cmp.Compare(b.Commits, a.Commits), cmp.Compare(a.Email, b.Email))
	})
	snap.Totals.Contributors = len(snap.Contributors)
	if len(snap.Contributors) > maxItems {
		snap.Contributors = snap.Contributors[:maxItems]
	}

	return snap, nil
}

// parsePullRequest recognizes GitHub merge and squash commit messages.
func parsePullRequest(message string) (number int64, title string, ok bool) {
	first := firstLine(message)

	if m := mergePRPattern.FindStringSubmatch(first); m != nil {
		number, _ = strconv.ParseInt(m[1], 10, 64)
		title = first
		if _, body, found := strings.Cut(message, "\n\n"); found && strings.TrimSpace(body) != "" {
			title = firstLine(strings.TrimSpace(body))
		}
		return number, title, true
	}
	if m := squashPRPattern.FindStringSubmatch(first); m != nil {
		number, _ = strconv.ParseInt(m[2], 10, 64)
		return number, m[1], true
	}
	return 0, "", false
}

// lineStats sums additions and deletions against the first parent.
func lineStats(c *object.Commit) (adds, dels int64, err error) {
	stats, err := c.Stats()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to diff %s: %w", c.Hash, err)
	}
	for _, s := range stats {
		adds += int64(s.Addition)
		dels += int64(s.Deletion)
	}
	return adds, dels, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

// isEmptyRemote reports whether a clone failed only because the remote has no commits.
func isEmptyRemote(err error) bool {
	return errors.Is(err, transport.ErrEmptyRemoteRepository)
}
