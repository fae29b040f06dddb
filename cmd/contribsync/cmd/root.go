// Package cmd is the operator CLI: inspect throttle decisions, normalize
// trigger payloads, classify pull requests and backfill repository events.
package cmd

import (
	"fmt"
	"os"

	"github.com/gomantics/contribsync/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "contribsync",
		Short: "Operate the repository activity sync engine",
		Long: `contribsync inspects and operates the repository activity sync engine.

Configuration is read the same way the API service reads it: config.yaml
(or CONFIG_PATH) overlaid with CONTRIBSYNC_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			_, err := config.Load()
			return err
		},
	}

	root.AddCommand(
		newThrottleCmd(),
		newNormalizeCmd(),
		newClassifyCmd(),
		newBackfillCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
