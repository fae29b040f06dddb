package backfill

import (
	"context"
	"time"

	"github.com/gomantics/contribsync/db"
	"github.com/gomantics/contribsync/pkg/pgconv"
)

// Record is one row of the events cache.
type Record struct {
	EventID         string
	EventType       string
	ActorLogin      string
	RepositoryOwner string
	RepositoryName  string
	Payload         []byte
	CreatedAt       time.Time
	Notes           string
}

// Store persists backfilled events. Saving an existing event is not an error.
type Store interface {
	Save(ctx context.Context, r Record) error
	Count(ctx context.Context) (int64, error)
}

// PGStore writes to github_events_cache.
type PGStore struct{}

func (PGStore) Save(ctx context.Context, r Record) error {
	return db.Query(ctx, func(q *db.Queries) error {
		return q.UpsertGithubEvent(ctx, db.UpsertGithubEventParams{
			EventID:         r.EventID,
			EventType:       r.EventType,
			ActorLogin:      r.ActorLogin,
			RepositoryOwner: r.RepositoryOwner,
			RepositoryName:  r.RepositoryName,
			Payload:         r.Payload,
			CreatedAt:       pgconv.At(r.CreatedAt),
			ProcessingNotes: pgconv.Text(r.Notes),
		})
	})
}

func (PGStore) Count(ctx context.Context) (int64, error) {
	return db.Query1(ctx, func(q *db.Queries) (int64, error) {
		return q.CountGithubEvents(ctx)
	})
}
