package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomantics/contribsync/db"
	"github.com/gomantics/contribsync/pkg/pgconv"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrNotFound      = errors.New("repository not found")
	ErrAlreadyExists = errors.New("repository already exists")
)

// Create registers a new repository or returns the existing one together
// with ErrAlreadyExists. Concurrent registrations of the same owner/name
// resolve to one row.
func Create(ctx context.Context, params CreateParams) (*Repo, error) {
	var existed bool
	dbRepo, err := db.Tx1(ctx, func(q *db.Queries) (db.Repository, error) {
		found, err := q.GetRepositoryByOwnerAndName(ctx, db.GetRepositoryByOwnerAndNameParams{
			Owner: params.Owner,
			Name:  params.Name,
		})
		if err == nil {
			existed = true
			return found, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return db.Repository{}, err
		}

		now := time.Now().Unix()
		return q.CreateRepository(ctx, db.CreateRepositoryParams{
			ID:      uuid.NewString(),
			Owner:   params.Owner,
			Name:    params.Name,
			Status:  StatusPending.String(),
			Created: now,
			Updated: now,
		})
	})
	if db.IsUniqueViolation(err) {
		// lost the race to a concurrent insert
		existing, gerr := GetByOwnerAndName(ctx, params.Owner, params.Name)
		if gerr != nil {
			return nil, gerr
		}
		return existing, ErrAlreadyExists
	}
	if err != nil {
		return nil, err
	}
	if existed {
		return toRepo(dbRepo), ErrAlreadyExists
	}
	return toRepo(dbRepo), nil
}

// GetByID retrieves a repository by ID
func GetByID(ctx context.Context, id string) (*Repo, error) {
	dbRepo, err := db.Query1(ctx, func(q *db.Queries) (db.Repository, error) {
		return q.GetRepositoryByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toRepo(dbRepo), nil
}

// GetByOwnerAndName retrieves a repository by owner/name
func GetByOwnerAndName(ctx context.Context, owner, name string) (*Repo, error) {
	dbRepo, err := db.Query1(ctx, func(q *db.Queries) (db.Repository, error) {
		return q.GetRepositoryByOwnerAndName(ctx, db.GetRepositoryByOwnerAndNameParams{
			Owner: owner,
			Name:  name,
		})
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toRepo(dbRepo), nil
}

// List retrieves repositories page by page
func List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}

	var dbRepos []db.Repository
	var total int64

	err := db.Query(ctx, func(q *db.Queries) error {
		var err error
		dbRepos, err = q.ListRepositories(ctx, db.ListRepositoriesParams{
			Limit:  int32(params.Limit),
			Offset: int32(params.Offset),
		})
		if err != nil {
			return err
		}
		total, err = q.CountRepositories(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	repos := make([]Repo, len(dbRepos))
	for i, dbRepo := range dbRepos {
		repos[i] = *toRepo(dbRepo)
	}

	return &ListResult{Repos: repos, Total: total}, nil
}

// ListAll walks every tracked repository
func ListAll(ctx context.Context) ([]Repo, error) {
	const pageSize = 100

	var all []Repo
	for offset := 0; ; offset += pageSize {
		page, err := List(ctx, ListParams{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Repos...)
		if len(page.Repos) < pageSize {
			return all, nil
		}
	}
}

// Delete removes a repository by ID
func Delete(ctx context.Context, id string) error {
	err := db.Tx(ctx, func(q *db.Queries) error {
		if _, err := q.GetRepositoryByID(ctx, id); err != nil {
			return err
		}
		return q.DeleteRepository(ctx, id)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// UpdateStatus updates the status of a repository and clears its error
func UpdateStatus(ctx context.Context, id string, status Status) error {
	return updateStatus(ctx, id, status, pgtype.Text{})
}

// SetError moves the repository to the error status with a message
func SetError(ctx context.Context, id string, errMsg string) error {
	return updateStatus(ctx, id, StatusError, pgtype.Text{String: errMsg, Valid: true})
}

// RestoreStatus puts back a previously read status and error message
func RestoreStatus(ctx context.Context, id string, status Status, errMsg string) error {
	if !status.Valid() {
		return fmt.Errorf("restore repository %s: unknown status %q", id, status)
	}
	return updateStatus(ctx, id, status, pgconv.Text(errMsg))
}

func updateStatus(ctx context.Context, id string, status Status, errMsg pgtype.Text) error {
	now := time.Now().Unix()
	_, err := db.Query1(ctx, func(q *db.Queries) (db.Repository, error) {
		return q.UpdateRepositoryStatus(ctx, db.UpdateRepositoryStatusParams{
			ID:      id,
			Status:  status.String(),
			Error:   errMsg,
			Updated: now,
		})
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// MarkSynced records a successful sync: status ready, last-synced timestamp
// and the counts behind the data availability summary
func MarkSynced(ctx context.Context, id string, params SyncedParams) error {
	_, err := db.Query1(ctx, func(q *db.Queries) (db.Repository, error) {
		return q.MarkRepositorySynced(ctx, db.MarkRepositorySyncedParams{
			LastSyncedAt:     pgconv.ToTimestamptz(&params.SyncedAt),
			Complete:         params.Complete,
			CommitCount:      params.Counts.Commits,
			PullRequestCount: params.Counts.PullRequests,
			ContributorCount: params.Counts.Contributors,
			Updated:          time.Now().Unix(),
			ID:               id,
		})
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func toRepo(dbRepo db.Repository) *Repo {
	return &Repo{
		ID:              dbRepo.ID,
		Owner:           dbRepo.Owner,
		Name:            dbRepo.Name,
		Status:          Status(dbRepo.Status),
		Error:           dbRepo.Error.String,
		LastSyncedAt:    pgconv.FromTimestamptz(dbRepo.LastSyncedAt),
		HasCompleteData: dbRepo.HasCompleteData,
		Counts: ActivityCounts{
			Commits:      dbRepo.CommitCount,
			PullRequests: dbRepo.PullRequestCount,
			Contributors: dbRepo.ContributorCount,
		},
		Created: dbRepo.Created,
		Updated: dbRepo.Updated,
	}
}
