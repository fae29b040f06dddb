package cmd

import (
	"fmt"

	"github.com/gomantics/contribsync/domains/throttle"
	"github.com/spf13/cobra"
)

func newThrottleCmd() *cobra.Command {
	var (
		reason   string
		hours    float64
		complete bool
	)

	c := &cobra.Command{
		Use:   "throttle",
		Short: "Explain the throttle decision for a reason and elapsed time",
		Example: `  contribsync throttle --reason scheduled --hours 1.5 --complete
  contribsync throttle --reason manual --hours 0.01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if hours < 0 {
				return fmt.Errorf("--hours must not be negative")
			}
			d := throttle.FromConfig().ShouldAllow(hours, reason, complete)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reason:          %s\n", reason)
			fmt.Fprintf(out, "hours since:     %.3f\n", hours)
			fmt.Fprintf(out, "complete data:   %t\n", complete)
			fmt.Fprintf(out, "base window:     %.3fh\n", d.BaseHours)
			fmt.Fprintf(out, "effective:       %.3fh\n", d.EffectiveHours)
			fmt.Fprintf(out, "decision:        %s\n", d)
			return nil
		},
	}

	c.Flags().StringVarP(&reason, "reason", "r", "manual", "trigger reason")
	c.Flags().Float64Var(&hours, "hours", 0, "hours since the last successful sync")
	c.Flags().BoolVar(&complete, "complete", false, "repository already has a complete baseline")
	return c
}
