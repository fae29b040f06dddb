package repositories

import (
	"context"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/domains/activitycache"
	"github.com/gomantics/contribsync/domains/classify"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncing"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Repos is the repository store behind the handlers
type Repos interface {
	Get(ctx context.Context, id string) (*repos.Repo, error)
	Create(ctx context.Context, params repos.CreateParams) (*repos.Repo, error)
	List(ctx context.Context, params repos.ListParams) (*repos.ListResult, error)
	Delete(ctx context.Context, id string) error
}

// Snapshots reads fresh activity snapshots by owner/name
type Snapshots interface {
	Get(ctx context.Context, key string) (activitycache.Entry, bool, error)
}

type Deps struct {
	Repos      Repos
	Submitter  syncing.Submitter
	Snapshots  Snapshots
	Classifier func() *classify.Classifier
}

type handlers struct {
	Deps
}

func Configure(e *echo.Echo, l *zap.Logger, deps Deps) {
	if deps.Classifier == nil {
		deps.Classifier = classify.FromConfig
	}
	h := handlers{deps}

	e.POST("/v1/repositories", web.Wrap(h.Create, l))
	e.GET("/v1/repositories", web.Wrap(h.List, l))
	e.GET("/v1/repositories/:id", web.Wrap(h.Get, l))
	e.DELETE("/v1/repositories/:id", web.Wrap(h.Delete, l))
	e.GET("/v1/repositories/:id/sync-status", web.Wrap(h.SyncStatus, l))
	e.POST("/v1/repositories/:id/sync", web.Wrap(h.Sync, l))
	e.GET("/v1/repositories/:id/quadrants", web.Wrap(h.Quadrants, l))
}
