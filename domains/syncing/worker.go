package syncing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gomantics/contribsync/config"
	"github.com/gomantics/contribsync/domains/syncreq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Worker runs queued sync jobs in the background
type Worker struct {
	l          *zap.Logger
	queue      Queue
	dispatcher *Dispatcher
	workers    int
	interval   time.Duration
	wg         sync.WaitGroup
	cancel     context.CancelFunc
}

// DefaultPollInterval is used when NewWorker gets a non-positive interval.
const DefaultPollInterval = 2 * time.Second

// NewWorker creates a pool of workers polling queue every interval
func NewWorker(l *zap.Logger, queue Queue, dispatcher *Dispatcher, workers int, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Worker{
		l:          l.Named("worker"),
		queue:      queue,
		dispatcher: dispatcher,
		workers:    max(workers, 1),
		interval:   interval,
	}
}

// StartWorker starts the background worker pool
func StartWorker(lc fx.Lifecycle, l *zap.Logger, queue Queue, dispatcher *Dispatcher) {
	worker := NewWorker(l, queue, dispatcher, int(config.Sync.Workers()), config.Sync.PollInterval())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			worker.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			worker.Stop()
			return nil
		},
	})
}

// Start begins the worker goroutines
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.l.Info("starting sync workers", zap.Int("workers", w.workers))

	for i := range w.workers {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
}

// Stop gracefully stops all workers
func (w *Worker) Stop() {
	w.l.Info("stopping sync workers")
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.l.Info("all workers stopped")
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()

	l := w.l.With(zap.Int("worker_id", workerID))
	l.Debug("worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Debug("worker stopping")
			return
		case <-ticker.C:
			for ctx.Err() == nil && w.processJob(ctx, l) {
			}
		}
	}
}

// processJob claims one queued job and dispatches it. It reports whether a
// job was claimed.
func (w *Worker) processJob(ctx context.Context, l *zap.Logger) bool {
	job, err := w.queue.Claim(ctx)
	if errors.Is(err, ErrNoJob) {
		return false
	}
	if err != nil {
		l.Error("failed to claim queued job", zap.Error(err))
		return false
	}

	l.Debug("claimed job",
		zap.String("job_id", job.JobID),
		zap.String("repository_id", job.RepositoryID),
	)

	res, err := w.dispatcher.Dispatch(ctx, syncreq.SourceCanonical, job.Payload)
	if err != nil {
		l.Warn("sync job ended without success",
			zap.String("job_id", job.JobID),
			zap.String("outcome", string(res.Outcome)),
			zap.Error(err),
		)
	}
	return true
}
