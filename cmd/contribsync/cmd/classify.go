package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/gomantics/contribsync/domains/classify"
	"github.com/gomantics/contribsync/libs/gitrepo"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var (
		snapshot bool
		asJSON   bool
	)

	c := &cobra.Command{
		Use:   "classify <prs.json|->",
		Short: "Classify pull requests into contribution quadrants",
		Long: `Classify reads a JSON array of pull requests
({"id", "title", "additions", "deletions"}) or, with --snapshot, a cached
activity snapshot, and prints the quadrant of each pull request together
with the batch distribution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var prs []classify.PullRequest
			if snapshot {
				var snap gitrepo.ActivitySnapshot
				if err := json.Unmarshal(raw, &snap); err != nil {
					return fmt.Errorf("decode snapshot: %w", err)
				}
				prs = classify.FromSnapshot(&snap)
			} else if err := json.Unmarshal(raw, &prs); err != nil {
				return fmt.Errorf("decode pull requests: %w", err)
			}

			report := classify.Analyze(classify.FromConfig(), prs)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return report.Render(cmd.OutOrStdout())
		},
	}

	c.Flags().BoolVar(&snapshot, "snapshot", false, "input is an activity snapshot")
	c.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return c
}
