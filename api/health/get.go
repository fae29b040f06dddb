package health

import (
	"context"
	"time"

	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/db"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// Bus reports whether the trigger intake is consuming events
type Bus interface {
	Running() chan struct{}
}

// GetResponse is the health check response
type GetResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Intake   string `json:"intake"`
}

func Configure(e *echo.Echo, l *zap.Logger, bus Bus) {
	e.GET("/v1/health", web.Wrap(func(c web.Context) error {
		return Get(c, bus)
	}, l))
}

// Get handles GET /v1/health. The service is degraded, not down, when a
// dependency check fails.
func Get(c web.Context, bus Bus) error {
	ctx := c.Request().Context()

	resp := GetResponse{Status: "ok", Database: "ok", Intake: "ok"}

	if err := ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "error: " + err.Error()
	}

	select {
	case <-bus.Running():
	default:
		resp.Status = "degraded"
		resp.Intake = "not running"
	}

	return c.OK(resp)
}

func ping(ctx context.Context) error {
	pool := db.GetPool()
	if pool == nil {
		return db.ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return pool.Ping(ctx)
}
