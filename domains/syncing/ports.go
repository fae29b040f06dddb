package syncing

import (
	"context"
	"time"

	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncreq"
)

// RepoStore is the repository state the dispatcher reads and updates.
type RepoStore interface {
	Get(ctx context.Context, id string) (*repos.Repo, error)
	MarkSyncing(ctx context.Context, id string) error
	MarkSynced(ctx context.Context, id string, params repos.SyncedParams) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	// Restore sets status and error back after an interrupted dispatch.
	Restore(ctx context.Context, id string, status repos.Status, errMsg string) error
}

// Ledger records per-job state transitions keyed by jobId.
type Ledger interface {
	// Begin claims jobID for this dispatch. It returns false when the job is
	// already in flight or finished.
	Begin(ctx context.Context, req syncreq.Request) (bool, error)
	Transition(ctx context.Context, jobID string, state State, attempts int, errMsg string) error
	// LastSucceeded returns when the last sync for repository and reason
	// completed successfully.
	LastSucceeded(ctx context.Context, repositoryID, reason string) (time.Time, bool, error)
}

// Queue holds normalized requests waiting for a worker.
type Queue interface {
	// Enqueue returns false when the jobId is already known.
	Enqueue(ctx context.Context, req syncreq.Request) (bool, error)
	Claim(ctx context.Context) (Job, error)
}

// Cache receives fetched snapshots.
type Cache interface {
	Set(ctx context.Context, key string, payload []byte) error
}
