package repositories

import (
	"errors"
	"time"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/repos"
	"go.uber.org/zap"
)

// SyncStatusResponse is what the dashboard polls while a sync runs
type SyncStatusResponse struct {
	RepositoryID     string                  `json:"repositoryId"`
	Status           string                  `json:"status"`
	Error            string                  `json:"error,omitempty"`
	LastSyncedAt     *time.Time              `json:"lastSyncedAt,omitempty"`
	DataAvailability *repos.DataAvailability `json:"dataAvailability,omitempty"`
}

// SyncStatus handles GET /v1/repositories/:id/sync-status. An unknown
// repository is a status, not an error.
func (h handlers) SyncStatus(c web.Context) error {
	id := c.Param("id")

	repo, err := h.Repos.Get(c.Request().Context(), id)
	if errors.Is(err, repos.ErrNotFound) {
		return c.OK(SyncStatusResponse{RepositoryID: id, Status: repos.StatusNotFound.String()})
	}
	if err != nil {
		c.L.Error("failed to get repo", zap.Error(err))
		return c.InternalError("failed to get sync status")
	}

	availability := repo.Availability()
	return c.OK(SyncStatusResponse{
		RepositoryID:     repo.ID,
		Status:           repo.Status.String(),
		Error:            repo.Error,
		LastSyncedAt:     repo.LastSyncedAt,
		DataAvailability: &availability,
	})
}
