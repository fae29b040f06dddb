package syncing

import (
	"context"
	"errors"
	"time"

	"github.com/gomantics/contribsync/db"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/gomantics/contribsync/pkg/pgconv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrJobNotFound is returned by Get for an unknown jobId.
var ErrJobNotFound = errors.New("sync job not found")

// DefaultReclaimAfter is how long an unfinished job may go without a
// transition before Claim hands it out again.
const DefaultReclaimAfter = 15 * time.Minute

// PGLedger is the Postgres-backed Ledger and Queue over the sync_jobs table.
// Jobs left mid-flight by a crashed worker are claimed again once they have
// not moved for ReclaimAfter.
type PGLedger struct {
	ReclaimAfter time.Duration
}

func (PGLedger) Begin(ctx context.Context, req syncreq.Request) (bool, error) {
	_, err := db.Query1(ctx, func(q *db.Queries) (string, error) {
		return q.BeginSyncJob(ctx, db.BeginSyncJobParams{
			JobID:        req.JobID,
			EventName:    syncreq.EventName,
			RepositoryID: req.RepositoryID,
			Reason:       req.Reason.String(),
			Priority:     req.Priority.String(),
			Payload:      syncreq.MustEncode(req),
			Created:      time.Now().Unix(),
		})
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (PGLedger) Enqueue(ctx context.Context, req syncreq.Request) (bool, error) {
	n, err := db.Query1(ctx, func(q *db.Queries) (int64, error) {
		return q.EnqueueSyncJob(ctx, db.EnqueueSyncJobParams{
			JobID:        req.JobID,
			EventName:    syncreq.EventName,
			RepositoryID: req.RepositoryID,
			Reason:       req.Reason.String(),
			Priority:     req.Priority.String(),
			Payload:      syncreq.MustEncode(req),
			Created:      time.Now().Unix(),
		})
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (p PGLedger) Claim(ctx context.Context) (Job, error) {
	reclaimAfter := p.ReclaimAfter
	if reclaimAfter <= 0 {
		reclaimAfter = DefaultReclaimAfter
	}

	now := time.Now()
	row, err := db.Query1(ctx, func(q *db.Queries) (db.SyncJob, error) {
		return q.ClaimQueuedSyncJob(ctx, db.ClaimQueuedSyncJobParams{
			Updated:     now.Unix(),
			StaleBefore: now.Add(-reclaimAfter).Unix(),
		})
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrNoJob
	}
	if err != nil {
		return Job{}, err
	}
	return toJob(row), nil
}

func (PGLedger) Transition(ctx context.Context, jobID string, state State, attempts int, errMsg string) error {
	var completedAt pgtype.Timestamptz
	if state.Terminal() {
		completedAt = pgconv.At(time.Now())
	}

	return db.Query(ctx, func(q *db.Queries) error {
		return q.UpdateSyncJobState(ctx, db.UpdateSyncJobStateParams{
			JobID:       jobID,
			State:       state.String(),
			Attempts:    int32(attempts),
			Error:       pgconv.Text(errMsg),
			CompletedAt: completedAt,
			Updated:     time.Now().Unix(),
		})
	})
}

func (PGLedger) LastSucceeded(ctx context.Context, repositoryID, reason string) (time.Time, bool, error) {
	ts, err := db.Query1(ctx, func(q *db.Queries) (pgtype.Timestamptz, error) {
		return q.LastSucceededSyncJob(ctx, db.LastSucceededSyncJobParams{
			RepositoryID: repositoryID,
			Reason:       reason,
		})
	})
	if err != nil {
		return time.Time{}, false, err
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return ts.Time, true, nil
}

// Get returns the ledger row for jobID.
func (PGLedger) Get(ctx context.Context, jobID string) (Job, error) {
	row, err := db.Query1(ctx, func(q *db.Queries) (db.SyncJob, error) {
		return q.GetSyncJob(ctx, jobID)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, err
	}
	return toJob(row), nil
}

func toJob(row db.SyncJob) Job {
	return Job{
		JobID:        row.JobID,
		RepositoryID: row.RepositoryID,
		Reason:       row.Reason,
		State:        State(row.State),
		Attempts:     int(row.Attempts),
		Error:        row.Error.String,
		Payload:      row.Payload,
		CompletedAt:  pgconv.FromTimestamptz(row.CompletedAt),
		Created:      row.Created,
		Updated:      row.Updated,
	}
}
