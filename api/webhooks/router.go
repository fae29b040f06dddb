package webhooks

import (
	"context"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncing"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Finder resolves a webhook's repository to a tracked one
type Finder interface {
	FindByName(ctx context.Context, owner, name string) (*repos.Repo, error)
}

type handlers struct {
	repos  Finder
	submit syncing.Submitter
	secret string
}

// Configure mounts the webhook receiver. An empty secret disables
// signature checks.
func Configure(e *echo.Echo, l *zap.Logger, finder Finder, submit syncing.Submitter, secret string) {
	h := handlers{repos: finder, submit: submit, secret: secret}

	e.POST("/v1/webhooks/github", web.Wrap(h.GitHub, l))
}
