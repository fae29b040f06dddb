package syncing

import (
	"context"
	"sync"
	"time"

	"github.com/gomantics/contribsync/config"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncreq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RepoLister lists every tracked repository.
type RepoLister interface {
	ListAll(ctx context.Context) ([]repos.Repo, error)
}

// Scheduler submits a scheduled trigger for every repository on each tick.
// Whether a sync actually runs is left to the throttle policy.
type Scheduler struct {
	l        *zap.Logger
	lister   RepoLister
	submit   Submitter
	interval time.Duration
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// DefaultScheduleInterval is used when NewScheduler gets a non-positive interval.
const DefaultScheduleInterval = 30 * time.Minute

func NewScheduler(l *zap.Logger, lister RepoLister, submit Submitter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultScheduleInterval
	}
	return &Scheduler{
		l:        l.Named("scheduler"),
		lister:   lister,
		submit:   submit,
		interval: interval,
	}
}

// StartScheduler runs the scheduler when sync.schedule_enabled is set.
func StartScheduler(lc fx.Lifecycle, l *zap.Logger, lister RepoLister, submit Submitter) {
	if !config.Sync.ScheduleEnabled() {
		l.Info("scheduled syncs disabled")
		return
	}
	s := NewScheduler(l, lister, submit, config.Sync.ScheduleInterval())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Tick submits one scheduled trigger per repository and returns how many
// were accepted.
func (s *Scheduler) Tick(ctx context.Context) int {
	all, err := s.lister.ListAll(ctx)
	if err != nil {
		s.l.Error("failed to list repositories", zap.Error(err))
		return 0
	}

	submitted := 0
	for _, repo := range all {
		payload := syncreq.MustEncode(syncreq.Request{
			RepositoryID:   repo.ID,
			RepositoryName: repo.FullName(),
			Days:           syncreq.DefaultDays,
			Priority:       syncreq.PriorityLow,
			Reason:         syncreq.ReasonScheduled,
			MaxItems:       syncreq.DefaultMaxItems,
		})
		if _, err := s.submit.Submit(ctx, syncreq.SourceScheduled, payload); err != nil {
			s.l.Warn("failed to submit scheduled sync",
				zap.String("repository_id", repo.ID),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}

	s.l.Debug("scheduled syncs submitted", zap.Int("count", submitted))
	return submitted
}
