package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/gomantics/contribsync/domains/syncreq"
	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var source string

	c := &cobra.Command{
		Use:   "normalize <payload.json|->",
		Short: "Print the canonical sync request for a trigger payload",
		Example: `  contribsync normalize --source queue-manager payload.json
  echo '{"repositoryId":"r1"}' | contribsync normalize --source manual -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			req, err := syncreq.Normalize(syncreq.ParseSource(source), payload)
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := json.Indent(&out, syncreq.MustEncode(req), "", "  "); err != nil {
				return err
			}
			out.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}

	c.Flags().StringVarP(&source, "source", "s", string(syncreq.SourceCanonical),
		"payload source: canonical, queue-manager, webhook, manual, scheduled")
	return c
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}
