package repositories

import (
	"github.com/goccy/go-json"
	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/syncreq"
	"go.uber.org/zap"
)

// SyncRequest is the optional body of a manual sync
type SyncRequest struct {
	Days     int `json:"days,omitempty" validate:"omitempty,min=1"`
	MaxItems int `json:"maxItems,omitempty" validate:"omitempty,min=1"`
}

// SyncResponse acknowledges a queued sync
type SyncResponse struct {
	JobID        string `json:"jobId"`
	RepositoryID string `json:"repositoryId"`
	Reason       string `json:"reason"`
	Priority     string `json:"priority"`
}

// Sync handles POST /v1/repositories/:id/sync
func (h handlers) Sync(c web.Context) error {
	var req SyncRequest
	if err := c.BindAndValidate(&req); err != nil {
		return c.BadRequest("days and maxItems must be positive numbers")
	}

	repo, ok, err := h.load(c)
	if !ok {
		return err
	}

	trigger := map[string]any{
		"repositoryId":   repo.ID,
		"repositoryName": repo.FullName(),
	}
	if req.Days > 0 {
		trigger["days"] = req.Days
	}
	if req.MaxItems > 0 {
		trigger["maxItems"] = req.MaxItems
	}
	payload, err := json.Marshal(trigger)
	if err != nil {
		return c.InternalError("failed to encode sync request")
	}

	queued, err := h.Submitter.Submit(c.Request().Context(), syncreq.SourceManual, payload)
	if syncreq.IsValidation(err) {
		return c.BadRequest(err.Error())
	}
	if err != nil {
		c.L.Error("failed to submit sync", zap.Error(err))
		return c.Unavailable("sync could not be queued")
	}

	c.L.Info("manual sync queued",
		zap.String("job_id", queued.JobID),
		zap.String("repository", repo.FullName()),
	)

	return c.Accepted(SyncResponse{
		JobID:        queued.JobID,
		RepositoryID: queued.RepositoryID,
		Reason:       queued.Reason.String(),
		Priority:     queued.Priority.String(),
	})
}
