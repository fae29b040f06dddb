// Package backfill fills the repository events cache from the upstream
// event feed of every tracked repository.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gomantics/contribsync/config"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sourceTag = "events_backfill"

// Options bound a run. Zero values take the defaults below.
type Options struct {
	// RepositoryID restricts the run to one repository.
	RepositoryID     string
	Days             int
	MaxPages         int
	PerPage          int
	MaxRateLimitWait time.Duration
	PageDelay        time.Duration
	RepoDelay        time.Duration
}

// OptionsFromConfig reads Options from the backfill config group.
func OptionsFromConfig() Options {
	return Options{
		Days:             int(config.Backfill.Days()),
		MaxPages:         int(config.Backfill.MaxPages()),
		PerPage:          int(config.Backfill.PerPage()),
		MaxRateLimitWait: config.Backfill.MaxRateLimitWait(),
		PageDelay:        config.Backfill.PageDelay(),
		RepoDelay:        config.Backfill.RepoDelay(),
	}
}

func (o Options) withDefaults() Options {
	if o.Days <= 0 {
		o.Days = 30
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 10
	}
	if o.PerPage <= 0 || o.PerPage > 100 {
		o.PerPage = 100
	}
	if o.MaxRateLimitWait <= 0 {
		o.MaxRateLimitWait = time.Hour
	}
	return o
}

// Repos lists the repositories to backfill.
type Repos interface {
	Get(ctx context.Context, id string) (*repos.Repo, error)
	ListAll(ctx context.Context) ([]repos.Repo, error)
}

type Backfiller struct {
	l      *zap.Logger
	source EventSource
	store  Store
	repos  Repos
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
}

func New(l *zap.Logger, source EventSource, store Store, rs Repos) *Backfiller {
	return &Backfiller{
		l:      l.Named("backfill"),
		source: source,
		store:  store,
		repos:  rs,
		now:    time.Now,
		sleep:  sleep,
	}
}

// WithClock replaces the time source and the sleeper used for rate limit
// and inter-repository waits.
func (b *Backfiller) WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) *Backfiller {
	b.now = now
	b.sleep = sleep
	return b
}

// Run backfills every tracked repository, or only opts.RepositoryID. Per
// repository failures are counted in Stats and do not stop the run.
func (b *Backfiller) Run(ctx context.Context, opts Options) (Stats, error) {
	opts = opts.withDefaults()

	targets, err := b.targets(ctx, opts.RepositoryID)
	if err != nil {
		return Stats{}, err
	}
	if len(targets) == 0 {
		b.l.Info("no repositories to backfill")
		return Stats{}, nil
	}

	b.l.Info("starting events backfill",
		zap.Int("repositories", len(targets)),
		zap.Int("days", opts.Days),
	)

	var stats Stats
	start := b.now()
	pace := rate.NewLimiter(rate.Inf, 1)
	if opts.PageDelay > 0 {
		pace = rate.NewLimiter(rate.Every(opts.PageDelay), 1)
	}

	for i, repo := range targets {
		if err := b.repository(ctx, repo, opts, pace, &stats); err != nil {
			return stats, err
		}
		if i < len(targets)-1 && opts.RepoDelay > 0 {
			if err := b.sleep(ctx, opts.RepoDelay); err != nil {
				return stats, err
			}
		}
	}

	b.l.Info("events backfill complete",
		zap.Duration("duration", b.now().Sub(start)),
		zap.Int("repos_processed", stats.ReposProcessed),
		zap.Int("events_fetched", stats.EventsFetched),
		zap.Int("events_inserted", stats.EventsInserted),
		zap.Int("api_calls", stats.APICalls),
		zap.Int("errors", stats.Errors),
	)
	return stats, nil
}

func (b *Backfiller) targets(ctx context.Context, id string) ([]repos.Repo, error) {
	if id == "" {
		all, err := b.repos.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		return all, nil
	}
	repo, err := b.repos.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", id, err)
	}
	return []repos.Repo{*repo}, nil
}

// repository fetches and stores the events of one repository. Only context
// cancellation is returned as an error.
func (b *Backfiller) repository(ctx context.Context, repo repos.Repo, opts Options, pace *rate.Limiter, stats *Stats) error {
	l := b.l.With(zap.String("repository", repo.FullName()))

	events, err := b.collect(ctx, l, repo, opts, pace, stats)
	if err != nil {
		return err
	}

	inserted := 0
	notes := fmt.Sprintf("Events backfill on %s", b.now().UTC().Format(time.RFC3339))
	for _, ev := range events {
		rec, err := b.record(ev, repo, notes)
		if err == nil {
			err = b.store.Save(ctx, rec)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.Warn("failed to store event", zap.String("event_id", ev.ID), zap.Error(err))
			stats.Errors++
			continue
		}
		inserted++
	}

	stats.EventsInserted += inserted
	stats.ReposProcessed++
	metrics.RecordBackfill(len(events), inserted)
	l.Info("repository backfilled",
		zap.Int("fetched", len(events)),
		zap.Int("inserted", inserted),
	)
	return nil
}

// collect pages through the feed until it is exhausted, reaches MaxPages
// or yields an event older than the cutoff.
func (b *Backfiller) collect(ctx context.Context, l *zap.Logger, repo repos.Repo, opts Options, pace *rate.Limiter, stats *Stats) ([]Event, error) {
	cutoff := b.now().AddDate(0, 0, -opts.Days)
	var kept []Event
	defer func() { stats.EventsFetched += len(kept) }()

	for page := 1; page <= opts.MaxPages; {
		if err := pace.Wait(ctx); err != nil {
			return nil, err
		}

		events, err := b.source.ListEvents(ctx, repo.Owner, repo.Name, page, opts.PerPage)
		stats.APICalls++

		var rl *RateLimitError
		var se *StatusError
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, ErrRepositoryNotFound):
			l.Warn("repository not found upstream")
			return kept, nil
		case errors.As(err, &rl):
			wait := max(rl.Reset.Sub(b.now())+time.Minute, 0)
			if wait >= opts.MaxRateLimitWait {
				l.Warn("rate limited beyond the wait limit", zap.Time("reset", rl.Reset))
				return kept, nil
			}
			l.Info("waiting for rate limit reset", zap.Duration("wait", wait))
			metrics.RecordRateLimitWait(wait)
			if err := b.sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		case errors.As(err, &se):
			l.Warn("upstream refused event listing", zap.Int("status", se.Code))
			return kept, nil
		default:
			l.Warn("failed to list events", zap.Error(err))
			stats.Errors++
			return kept, nil
		}

		if len(events) == 0 {
			return kept, nil
		}
		for _, ev := range events {
			if ev.CreatedAt.Before(cutoff) {
				l.Debug("reached cutoff", zap.Int("page", page))
				return kept, nil
			}
			if Allowed(ev.Type) {
				kept = append(kept, ev)
			}
		}
		page++
	}
	return kept, nil
}

// record flattens an event into a cache row. The stored payload carries the
// actor and repository summary plus the event's own payload keys.
func (b *Backfiller) record(ev Event, repo repos.Repo, notes string) (Record, error) {
	owner, name := repo.Owner, repo.Name
	if o, n, ok := strings.Cut(ev.Repo.Name, "/"); ok {
		owner, name = o, n
	}

	payload := map[string]any{}
	if len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return Record{}, fmt.Errorf("decode payload of event %s: %w", ev.ID, err)
		}
	}
	if _, ok := payload["action"]; !ok {
		payload["action"] = nil
	}
	payload["actor"] = ev.Actor
	payload["repo"] = ev.Repo
	payload["public"] = ev.Public
	payload["backfill_source"] = sourceTag
	payload["backfill_date"] = b.now().UTC().Format(time.RFC3339)

	raw, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("encode payload of event %s: %w", ev.ID, err)
	}

	return Record{
		EventID:         ev.ID,
		EventType:       ev.Type,
		ActorLogin:      ev.Actor.Login,
		RepositoryOwner: owner,
		RepositoryName:  name,
		Payload:         raw,
		CreatedAt:       ev.CreatedAt,
		Notes:           notes,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
