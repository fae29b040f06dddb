package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gomantics/contribsync/api/health"
	"github.com/gomantics/contribsync/api/repositories"
	"github.com/gomantics/contribsync/api/syncs"
	"github.com/gomantics/contribsync/api/web"
	"github.com/gomantics/contribsync/api/webhooks"
	"github.com/gomantics/contribsync/config"
	"github.com/gomantics/contribsync/domains/activitycache"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncing"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Run serves the HTTP API for the lifetime of the app.
func Run(lc fx.Lifecycle, l *zap.Logger, intake *syncing.Intake, cache *activitycache.Cache) error {
	e := New(l, Deps{
		Bus:       intake,
		Submitter: intake,
		Repos:     repos.Store{},
		Jobs:      syncing.PGLedger{},
		Snapshots: cache,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", config.Server.Port()),
		Handler:           e,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				l.Info("starting API server", zap.String("addr", server.Addr))
				if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
					l.Error("error starting echo server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Info("shutdown signal received")
			return e.Shutdown(ctx)
		},
	})

	return nil
}

// RepoStore is what the repository and webhook routes need.
type RepoStore interface {
	repositories.Repos
	webhooks.Finder
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Bus       health.Bus
	Submitter syncing.Submitter
	Repos     RepoStore
	Jobs      syncs.Jobs
	Snapshots repositories.Snapshots
}

// New builds the echo instance with middleware and routes.
func New(l *zap.Logger, deps Deps) *echo.Echo {
	e := echo.New()

	if !config.IsDev() {
		e.HideBanner = true
		e.HidePort = true
	}
	e.Validator = web.NewValidator()

	configureMiddleware(e, l)
	configureRoutes(e, l, deps)

	return e
}

func configureMiddleware(e *echo.Echo, l *zap.Logger) {
	// Request ID must come first
	e.Use(middleware.RequestID())

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1 << 12, // 4 KB
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			l.Error("recovered from panic",
				zap.Error(err),
				zap.ByteString("stack", stack),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		},
	}))

	// Scrapes and health polls are not logged.
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || p == "/v1/health"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("route", v.RoutePath),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Status >= http.StatusInternalServerError {
				l.Warn("request failed", fields...)
				return nil
			}
			l.Info("request", fields...)
			return nil
		},
		LogLatency:   true,
		LogRemoteIP:  true,
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogRequestID: true,
		LogStatus:    true,
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.Server.CorsAllowedOrigins(),
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Origin", "X-Request-ID"},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Length"},
		MaxAge:           int((24 * time.Hour).Seconds()),
	}))

	if config.IsDev() {
		e.IPExtractor = echo.ExtractIPDirect()
	} else {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}
}

func configureRoutes(e *echo.Echo, l *zap.Logger, deps Deps) {
	health.Configure(e, l, deps.Bus)
	repositories.Configure(e, l, repositories.Deps{
		Repos:     deps.Repos,
		Submitter: deps.Submitter,
		Snapshots: deps.Snapshots,
	})
	syncs.Configure(e, l, deps.Submitter, deps.Jobs)
	webhooks.Configure(e, l, deps.Repos, deps.Submitter, config.Server.WebhookSecret())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
