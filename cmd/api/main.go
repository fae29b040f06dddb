package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gomantics/contribsync/api"
	"github.com/gomantics/contribsync/config"
	"github.com/gomantics/contribsync/db"
	"github.com/gomantics/contribsync/domains/activitycache"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncing"
	"github.com/gomantics/contribsync/libs/gitrepo"
	"github.com/gomantics/contribsync/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	if _, err := config.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	fx.New(
		fx.Provide(
			logger.New,
			newFetcher,
			newActivityCache,
			newDispatcher,
			syncing.NewIntake,
			func() syncing.Queue { return syncing.PGLedger{ReclaimAfter: config.Sync.ReclaimAfter()} },
			func() syncing.RepoLister { return repos.Store{} },
			func(i *syncing.Intake) syncing.Submitter { return i },
		),
		fx.Decorate(func(l *zap.Logger) *zap.Logger {
			return l.With(zap.String("service", "contribsync"))
		}),
		fx.Invoke(
			watchConfig,
			db.Init,
			syncing.StartIntake,
			syncing.StartWorker,
			syncing.StartScheduler,
			api.Run,
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{
				Logger: l,
			}
		}),
	).Run()
}

// watchConfig reloads the config file on change. Throttle windows and
// classifier thresholds are read per use, so reloads apply without a restart.
func watchConfig(lc fx.Lifecycle, l *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			err := config.Watch(
				func(*config.Values) { l.Info("configuration reloaded") },
				func(err error) { l.Warn("configuration reload rejected", zap.Error(err)) },
			)
			if err != nil {
				l.Warn("config file not watched", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			config.StopWatching()
			return nil
		},
	})
}

func newFetcher(l *zap.Logger) gitrepo.Fetcher {
	provider := gitrepo.NewGitHubProvider(config.Fetch.BaseURL(), config.Fetch.Token())
	return gitrepo.NewGuarded(l, gitrepo.NewGitFetcher(l, provider, repos.Store{}), gitrepo.GuardSettings{
		RequestsPerHour: config.Fetch.RequestsPerHour(),
		Burst:           int(config.Fetch.Burst()),
		BreakerTimeout:  config.Fetch.BreakerTimeout(),
	})
}

func newActivityCache(l *zap.Logger) *activitycache.Cache {
	return activitycache.New(l, activitycache.PGStore{}, config.Cache.StaleAfter())
}

func newDispatcher(l *zap.Logger, fetcher gitrepo.Fetcher, cache *activitycache.Cache) *syncing.Dispatcher {
	return syncing.NewDispatcher(l, syncing.Deps{
		Repos:   repos.Store{},
		Ledger:  syncing.PGLedger{},
		Fetcher: fetcher,
		Cache:   cache,
	}, syncing.SettingsFromConfig())
}
