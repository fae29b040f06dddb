package activitycache

import (
	"context"
	"errors"

	"github.com/gomantics/contribsync/db"
	"github.com/gomantics/contribsync/pkg/pgconv"
	"github.com/jackc/pgx/v5"
)

// PGStore keeps entries in github_activity_cache.
type PGStore struct{}

func (PGStore) Load(ctx context.Context, key string) (Entry, error) {
	row, err := db.Query1(ctx, func(q *db.Queries) (db.GithubActivityCache, error) {
		return q.GetActivityCache(ctx, key)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNoEntry
	}
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Key:       row.Repo,
		Payload:   row.ActivityData,
		UpdatedAt: row.UpdatedAt.Time,
	}, nil
}

func (PGStore) Save(ctx context.Context, e Entry) error {
	return db.Query(ctx, func(q *db.Queries) error {
		return q.UpsertActivityCache(ctx, db.UpsertActivityCacheParams{
			Repo:         e.Key,
			ActivityData: e.Payload,
			UpdatedAt:    pgconv.At(e.UpdatedAt),
		})
	})
}
