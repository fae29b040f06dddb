package repositories

import (
	"errors"
	"time"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/repos"
	"go.uber.org/zap"
)

// RepoResponse is the JSON form of a tracked repository
type RepoResponse struct {
	ID               string                 `json:"id"`
	Owner            string                 `json:"owner"`
	Name             string                 `json:"name"`
	Status           string                 `json:"status"`
	Error            string                 `json:"error,omitempty"`
	LastSyncedAt     *time.Time             `json:"lastSyncedAt,omitempty"`
	DataAvailability repos.DataAvailability `json:"dataAvailability"`
	Created          int64                  `json:"created"`
	Updated          int64                  `json:"updated"`
}

func toResponse(repo *repos.Repo) RepoResponse {
	return RepoResponse{
		ID:               repo.ID,
		Owner:            repo.Owner,
		Name:             repo.Name,
		Status:           repo.Status.String(),
		Error:            repo.Error,
		LastSyncedAt:     repo.LastSyncedAt,
		DataAvailability: repo.Availability(),
		Created:          repo.Created,
		Updated:          repo.Updated,
	}
}

// Get handles GET /v1/repositories/:id
func (h handlers) Get(c web.Context) error {
	repo, ok, err := h.load(c)
	if !ok {
		return err
	}
	return c.OK(toResponse(repo))
}

// load fetches the repository named by the :id param. When ok is false the
// response has already been written and err is what the handler returns.
func (h handlers) load(c web.Context) (repo *repos.Repo, ok bool, err error) {
	repo, err = h.Repos.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, repos.ErrNotFound) {
		return nil, false, c.NotFound("repository not found")
	}
	if err != nil {
		c.L.Error("failed to get repo", zap.Error(err))
		return nil, false, c.InternalError("failed to get repository")
	}
	return repo, true, nil
}
