// Package syncing drives repository activity syncs from trigger to cache.
//
// Triggers arrive on the intake bus, are normalized and queued in the job
// ledger, and are picked up by the worker pool. Each job goes through the
// Dispatcher: jobId claim, throttle check, fetch with bounded retries,
// cache write and repository update. Duplicate triggers are absorbed by the
// jobId claim rather than by locking.
package syncing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/gomantics/contribsync/config"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/gomantics/contribsync/domains/throttle"
	"github.com/gomantics/contribsync/libs/gitrepo"
	"github.com/gomantics/contribsync/pkg/metrics"
	"go.uber.org/zap"
)

// CompleteDataDays is the lookback at which a successful sync counts as a
// complete baseline.
const CompleteDataDays = 7

// settleTimeout bounds ledger and repository writes made after the dispatch
// context was cancelled.
const settleTimeout = 5 * time.Second

// Settings bound retries and timeouts.
type Settings struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	FetchTimeout   time.Duration
}

// SettingsFromConfig reads Settings from the sync config group.
func SettingsFromConfig() Settings {
	return Settings{
		MaxAttempts:    int(config.Sync.MaxAttempts()),
		InitialBackoff: config.Sync.InitialBackoff(),
		MaxBackoff:     config.Sync.MaxBackoff(),
		FetchTimeout:   config.Sync.FetchTimeout(),
	}
}

// Deps are the dispatcher's collaborators.
type Deps struct {
	Repos   RepoStore
	Ledger  Ledger
	Fetcher gitrepo.Fetcher
	Cache   Cache
	// Policy is called once per dispatch so reloaded windows apply.
	Policy func() *throttle.Policy
}

type Dispatcher struct {
	l        *zap.Logger
	deps     Deps
	settings Settings
	now      func() time.Time
}

func NewDispatcher(l *zap.Logger, deps Deps, s Settings) *Dispatcher {
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 3
	}
	if s.InitialBackoff <= 0 {
		s.InitialBackoff = 2 * time.Second
	}
	if s.MaxBackoff < s.InitialBackoff {
		s.MaxBackoff = s.InitialBackoff
	}
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = 2 * time.Minute
	}
	if deps.Policy == nil {
		deps.Policy = throttle.FromConfig
	}
	return &Dispatcher{
		l:        l.Named("dispatcher"),
		deps:     deps,
		settings: s,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch normalizes a trigger payload and runs it. The error is non-nil
// for invalid and failed outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, source syncreq.Source, payload []byte) (Result, error) {
	req, err := syncreq.Normalize(source, payload)
	if err != nil {
		d.l.Warn("rejected sync trigger",
			zap.String("source", string(source)),
			zap.Error(err),
		)
		metrics.RecordSyncOutcome("unknown", string(OutcomeInvalid), 0)
		return Result{Outcome: OutcomeInvalid, Err: err}, err
	}
	return d.DispatchRequest(ctx, req)
}

// DispatchRequest runs one normalized request to a terminal outcome.
func (d *Dispatcher) DispatchRequest(ctx context.Context, req syncreq.Request) (Result, error) {
	start := d.now()
	res, err := d.run(ctx, req)
	res.Request = req
	res.Err = err
	metrics.RecordSyncOutcome(req.Reason.String(), string(res.Outcome), d.now().Sub(start))
	return res, err
}

func (d *Dispatcher) run(ctx context.Context, req syncreq.Request) (Result, error) {
	l := d.l.With(
		zap.String("job_id", req.JobID),
		zap.String("repository_id", req.RepositoryID),
		zap.String("reason", req.Reason.String()),
	)

	begun, err := d.deps.Ledger.Begin(ctx, req)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("begin job %s: %w", req.JobID, err)
	}
	if !begun {
		l.Debug("duplicate job, nothing to do")
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	repo, err := d.deps.Repos.Get(ctx, req.RepositoryID)
	if errors.Is(err, repos.ErrNotFound) {
		verr := syncreq.NotFound(req.RepositoryID)
		d.transition(ctx, l, req.JobID, StateFailed, 0, verr.Error())
		l.Warn("repository no longer exists")
		return Result{Outcome: OutcomeInvalid}, verr
	}
	if err != nil {
		err = fmt.Errorf("load repository %s: %w", req.RepositoryID, err)
		if ctx.Err() != nil {
			return d.requeue(ctx, l, req, nil, 0, err)
		}
		d.transition(ctx, l, req.JobID, StateFailed, 0, err.Error())
		return Result{Outcome: OutcomeFailed}, err
	}

	state, err := d.throttleState(ctx, repo, req.Reason)
	if err != nil {
		if ctx.Err() != nil {
			return d.requeue(ctx, l, req, nil, 0, err)
		}
		d.transition(ctx, l, req.JobID, StateFailed, 0, err.Error())
		return Result{Outcome: OutcomeFailed}, err
	}

	decision := d.deps.Policy().Check(req.Reason.String(), state)
	metrics.RecordThrottleDecision(req.Reason.String(), decision.Allowed, decision.Bootstrap)
	if !decision.Allowed {
		l.Debug("sync throttled",
			zap.Float64("hours_since_last_sync", state.HoursSinceLastSync),
			zap.Float64("window_hours", decision.EffectiveHours),
		)
		d.transition(ctx, l, req.JobID, StateSkipped, 0, "")
		return Result{Outcome: OutcomeSkipped, Decision: &decision}, nil
	}

	if err := d.deps.Repos.MarkSyncing(ctx, repo.ID); err != nil {
		l.Warn("failed to mark repository syncing", zap.Error(err))
	}

	snap, attempts, err := d.fetch(ctx, l, req)
	if err != nil && ctx.Err() != nil {
		res, err := d.requeue(ctx, l, req, repo, attempts, err)
		res.Decision = &decision
		return res, err
	}

	// The fetch is done; its outcome is recorded even if ctx ends now.
	ctx, cancel := settle(ctx)
	defer cancel()

	if err != nil {
		d.transition(ctx, l, req.JobID, StateFailed, attempts, err.Error())
		if merr := d.deps.Repos.MarkFailed(ctx, repo.ID, err.Error()); merr != nil {
			l.Warn("failed to record repository error", zap.Error(merr))
		}
		l.Error("sync failed", zap.Int("attempts", attempts), zap.Error(err))
		return Result{Outcome: OutcomeFailed, Decision: &decision, Attempts: attempts}, err
	}

	res := Result{Outcome: OutcomeSucceeded, Decision: &decision, Attempts: attempts, Snapshot: snap}

	payload, err := json.Marshal(snap)
	if err == nil {
		err = d.deps.Cache.Set(ctx, repo.FullName(), payload)
	}
	if err != nil {
		res.CacheErr = err
		l.Warn("sync succeeded but activity cache was not updated", zap.Error(err))
	}

	synced := repos.SyncedParams{
		SyncedAt: d.now(),
		Counts: repos.ActivityCounts{
			Commits:      int64(snap.Totals.Commits),
			PullRequests: int64(snap.Totals.PullRequests),
			Contributors: int64(snap.Totals.Contributors),
		},
		Complete: repo.HasCompleteData || req.Days >= CompleteDataDays,
	}
	if err := d.deps.Repos.MarkSynced(ctx, repo.ID, synced); err != nil {
		l.Error("failed to update repository after sync", zap.Error(err))
	}

	d.transition(ctx, l, req.JobID, StateSucceeded, attempts, "")
	l.Info("sync succeeded",
		zap.Int("attempts", attempts),
		zap.Bool("bootstrap", decision.Bootstrap),
		zap.Int("commits", snap.Totals.Commits),
	)
	return res, nil
}

// throttleState derives the elapsed time since the last successful sync for
// the repository and reason, or since creation when there is none.
func (d *Dispatcher) throttleState(ctx context.Context, repo *repos.Repo, reason syncreq.Reason) (throttle.State, error) {
	last, ok, err := d.deps.Ledger.LastSucceeded(ctx, repo.ID, reason.String())
	if err != nil {
		return throttle.State{}, fmt.Errorf("last sync for %s: %w", repo.ID, err)
	}
	if !ok {
		last = repo.CreatedAt()
	}
	return throttle.State{
		HoursSinceLastSync: max(d.now().Sub(last).Hours(), 0),
		HasCompleteData:    repo.HasCompleteData,
	}, nil
}

// fetch calls the fetcher with exponential backoff. Permanent errors stop
// immediately; transient ones are retried up to MaxAttempts in total.
func (d *Dispatcher) fetch(ctx context.Context, l *zap.Logger, req syncreq.Request) (*gitrepo.ActivitySnapshot, int, error) {
	attempts := 0

	op := func() (*gitrepo.ActivitySnapshot, error) {
		attempts++
		d.transition(ctx, l, req.JobID, StateFetching, attempts, "")

		fctx, cancel := context.WithTimeout(ctx, d.settings.FetchTimeout)
		defer cancel()

		snap, err := d.deps.Fetcher.FetchActivity(fctx, req.RepositoryID, req.Days, req.MaxItems)
		if err == nil {
			return snap, nil
		}
		if !gitrepo.IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		if attempts < d.settings.MaxAttempts {
			l.Info("transient fetch failure, retrying", zap.Int("attempt", attempts), zap.Error(err))
			d.transition(ctx, l, req.JobID, StateRetryPending, attempts, err.Error())
		}
		return nil, err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = d.settings.InitialBackoff
	eb.MaxInterval = d.settings.MaxBackoff
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(d.settings.MaxAttempts-1)), ctx)
	snap, err := backoff.RetryWithData(op, b)
	return snap, attempts, err
}

// requeue hands an interrupted job back to the queue and puts the
// repository back in the status it had before the dispatch. repo is nil
// when the repository was never marked syncing.
func (d *Dispatcher) requeue(ctx context.Context, l *zap.Logger, req syncreq.Request, repo *repos.Repo, attempts int, cause error) (Result, error) {
	sctx, cancel := settle(ctx)
	defer cancel()

	d.transition(sctx, l, req.JobID, StateQueued, attempts, "interrupted: "+cause.Error())
	if repo != nil {
		status := repo.Status
		if status.IsActive() {
			status = repos.StatusPending
		}
		if err := d.deps.Repos.Restore(sctx, repo.ID, status, repo.Error); err != nil {
			l.Warn("failed to restore repository status", zap.Error(err))
		}
	}

	l.Info("sync interrupted, job requeued", zap.Int("attempts", attempts), zap.Error(cause))
	return Result{Outcome: OutcomeRequeued, Attempts: attempts}, fmt.Errorf("sync %s interrupted: %w", req.JobID, cause)
}

func settle(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
}

func (d *Dispatcher) transition(ctx context.Context, l *zap.Logger, jobID string, state State, attempts int, errMsg string) {
	ctx, cancel := settle(ctx)
	defer cancel()

	if err := d.deps.Ledger.Transition(ctx, jobID, state, attempts, errMsg); err != nil {
		l.Warn("failed to record job transition",
			zap.String("state", state.String()),
			zap.Error(err),
		)
	}
}
