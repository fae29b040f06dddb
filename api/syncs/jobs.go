package syncs

import (
	"errors"
	"time"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/syncing"
	"go.uber.org/zap"
)

// JobResponse is the ledger view of one sync job
type JobResponse struct {
	JobID        string     `json:"jobId"`
	RepositoryID string     `json:"repositoryId"`
	Reason       string     `json:"reason"`
	State        string     `json:"state"`
	Terminal     bool       `json:"terminal"`
	Attempts     int        `json:"attempts"`
	Error        string     `json:"error,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Created      int64      `json:"created"`
	Updated      int64      `json:"updated"`
}

// Job handles GET /v1/sync/jobs/:id
func (h handlers) Job(c web.Context) error {
	job, err := h.jobs.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, syncing.ErrJobNotFound) {
		return c.NotFound("job not found")
	}
	if err != nil {
		c.L.Error("failed to get job", zap.Error(err))
		return c.InternalError("failed to get job")
	}

	return c.OK(JobResponse{
		JobID:        job.JobID,
		RepositoryID: job.RepositoryID,
		Reason:       job.Reason,
		State:        job.State.String(),
		Terminal:     job.State.Terminal(),
		Attempts:     job.Attempts,
		Error:        job.Error,
		CompletedAt:  job.CompletedAt,
		Created:      job.Created,
		Updated:      job.Updated,
	})
}
