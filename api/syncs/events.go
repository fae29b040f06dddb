package syncs

import (
	"io"
	"net/http"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/syncreq"
	"go.uber.org/zap"
)

const maxEventBytes = 64 << 10

// EventResponse echoes the normalized request that was queued
type EventResponse struct {
	JobID        string `json:"jobId"`
	RepositoryID string `json:"repositoryId"`
	Reason       string `json:"reason"`
	Priority     string `json:"priority"`
	Days         int    `json:"days"`
	MaxItems     int    `json:"maxItems"`
}

// Event handles POST /v1/sync/events?source=<source>. The body is a
// canonical event, or a legacy payload of the named source.
func (h handlers) Event(c web.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEventBytes+1))
	if err != nil {
		return c.BadRequest("failed to read request body")
	}
	if len(body) > maxEventBytes {
		return c.Error(http.StatusRequestEntityTooLarge, "event payload too large")
	}

	source := syncreq.ParseSource(c.QueryParam("source"))

	req, err := h.submit.Submit(c.Request().Context(), source, body)
	if syncreq.IsValidation(err) {
		return c.BadRequest(err.Error())
	}
	if err != nil {
		c.L.Error("failed to submit sync event", zap.Error(err))
		return c.Unavailable("sync could not be queued")
	}

	c.L.Debug("sync event accepted",
		zap.String("source", string(source)),
		zap.String("job_id", req.JobID),
	)

	return c.Accepted(EventResponse{
		JobID:        req.JobID,
		RepositoryID: req.RepositoryID,
		Reason:       req.Reason.String(),
		Priority:     req.Priority.String(),
		Days:         req.Days,
		MaxItems:     req.MaxItems,
	})
}
