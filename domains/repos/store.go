package repos

import "context"

// Store adapts the package functions to the interfaces consumed by the
// sync dispatcher, the scheduler and the HTTP handlers.
type Store struct{}

func (Store) Get(ctx context.Context, id string) (*Repo, error) {
	return GetByID(ctx, id)
}

func (Store) ListAll(ctx context.Context) ([]Repo, error) {
	return ListAll(ctx)
}

func (Store) MarkSyncing(ctx context.Context, id string) error {
	return UpdateStatus(ctx, id, StatusSyncing)
}

func (Store) MarkSynced(ctx context.Context, id string, params SyncedParams) error {
	return MarkSynced(ctx, id, params)
}

func (Store) MarkFailed(ctx context.Context, id string, errMsg string) error {
	return SetError(ctx, id, errMsg)
}

func (Store) Restore(ctx context.Context, id string, status Status, errMsg string) error {
	return RestoreStatus(ctx, id, status, errMsg)
}

// Locate resolves a repository id to owner and name for the fetcher.
func (Store) Locate(ctx context.Context, id string) (owner, name string, err error) {
	repo, err := GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return repo.Owner, repo.Name, nil
}

func (Store) FindByName(ctx context.Context, owner, name string) (*Repo, error) {
	return GetByOwnerAndName(ctx, owner, name)
}

func (Store) Create(ctx context.Context, params CreateParams) (*Repo, error) {
	return Create(ctx, params)
}

func (Store) List(ctx context.Context, params ListParams) (*ListResult, error) {
	return List(ctx, params)
}

func (Store) Delete(ctx context.Context, id string) error {
	return Delete(ctx, id)
}
