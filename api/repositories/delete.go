package repositories

import (
	"errors"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/repos"
	"go.uber.org/zap"
)

// Delete handles DELETE /v1/repositories/:id. Jobs already queued for the
// repository fail with "Repository not found" when they run.
func (h handlers) Delete(c web.Context) error {
	id := c.Param("id")

	err := h.Repos.Delete(c.Request().Context(), id)
	if errors.Is(err, repos.ErrNotFound) {
		return c.NotFound("repository not found")
	}
	if err != nil {
		c.L.Error("failed to delete repo", zap.Error(err))
		return c.InternalError("failed to delete repository")
	}

	c.L.Info("repository deleted", zap.String("repo_id", id))

	return c.NoContent()
}
