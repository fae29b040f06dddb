package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gomantics/contribsync/config"
	"github.com/gomantics/contribsync/db"
	"github.com/gomantics/contribsync/domains/backfill"
	"github.com/gomantics/contribsync/domains/repos"
	"github.com/gomantics/contribsync/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBackfillCmd() *cobra.Command {
	var (
		repositoryID string
		days         int
		maxPages     int
	)

	c := &cobra.Command{
		Use:   "backfill-events",
		Short: "Fill the events cache from the upstream event feed",
		Long: `backfill-events pages through the public event feed of every tracked
repository (or only --repository) and stores star, fork, pull request and
issue events newer than --days in the events cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			l := logger.New()
			defer func() { _ = l.Sync() }()

			if err := db.Connect(ctx, l, config.Database.Dsn()); err != nil {
				return err
			}
			defer db.Close()

			opts := backfill.OptionsFromConfig()
			opts.RepositoryID = repositoryID
			if days > 0 {
				opts.Days = days
			}
			if maxPages > 0 {
				opts.MaxPages = maxPages
			}

			source, err := backfill.NewGitHubSource(config.Backfill.APIURL(), config.Fetch.Token(), nil)
			if err != nil {
				return err
			}
			store := backfill.PGStore{}
			stats, err := backfill.New(l, source, store, repos.Store{}).Run(ctx, opts)
			printStats(cmd, stats)
			if err != nil {
				return err
			}

			total, err := store.Count(context.WithoutCancel(ctx))
			if err != nil {
				l.Warn("failed to count cached events", zap.Error(err))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "events in cache:        %d\n", total)
			return nil
		},
	}

	c.Flags().StringVar(&repositoryID, "repository", "", "only backfill this repository id")
	c.Flags().IntVar(&days, "days", 0, "lookback in days (default from backfill.days)")
	c.Flags().IntVar(&maxPages, "max-pages", 0, "pages per repository (default from backfill.max_pages)")
	return c
}

func printStats(cmd *cobra.Command, s backfill.Stats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "repositories processed: %d\n", s.ReposProcessed)
	fmt.Fprintf(out, "events fetched:         %d\n", s.EventsFetched)
	fmt.Fprintf(out, "events inserted:        %d\n", s.EventsInserted)
	fmt.Fprintf(out, "api calls:              %d\n", s.APICalls)
	fmt.Fprintf(out, "errors:                 %d\n", s.Errors)
}
