package repositories

import (
	"github.com/goccy/go-json"
	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/classify"
	"github.com/gomantics/contribsync/libs/gitrepo"
	"go.uber.org/zap"
)

// QuadrantsResponse classifies the pull requests of the cached snapshot
type QuadrantsResponse struct {
	RepositoryID string `json:"repositoryId"`
	classify.Report
}

// Quadrants handles GET /v1/repositories/:id/quadrants
func (h handlers) Quadrants(c web.Context) error {
	repo, ok, err := h.load(c)
	if !ok {
		return err
	}

	entry, fresh, err := h.Snapshots.Get(c.Request().Context(), repo.FullName())
	if err != nil {
		c.L.Error("failed to read activity cache", zap.Error(err))
		return c.InternalError("failed to read activity")
	}
	if !fresh {
		return c.NotFound("no recent activity snapshot, trigger a sync first")
	}

	var snap gitrepo.ActivitySnapshot
	if err := json.Unmarshal(entry.Payload, &snap); err != nil {
		c.L.Error("corrupt activity snapshot", zap.String("key", entry.Key), zap.Error(err))
		return c.InternalError("failed to read activity")
	}

	return c.OK(QuadrantsResponse{
		RepositoryID: repo.ID,
		Report:       classify.Analyze(h.Classifier(), classify.FromSnapshot(&snap)),
	})
}
