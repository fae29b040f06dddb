package syncs

import (
	"context"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/syncing"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Jobs looks up ledger entries by jobId
type Jobs interface {
	Get(ctx context.Context, jobID string) (syncing.Job, error)
}

type handlers struct {
	submit syncing.Submitter
	jobs   Jobs
}

func Configure(e *echo.Echo, l *zap.Logger, submit syncing.Submitter, jobs Jobs) {
	h := handlers{submit: submit, jobs: jobs}

	e.POST("/v1/sync/events", web.Wrap(h.Event, l))
	e.GET("/v1/sync/jobs/:id", web.Wrap(h.Job, l))
}
