package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shrihari-lab/chipatlas/internal/catalog"
	"github.com/shrihari-lab/chipatlas/internal/filter"
	"github.com/shrihari-lab/chipatlas/internal/pipeline"
	"github.com/shrihari-lab/chipatlas/pkg/ascii"
	"github.com/shrihari-lab/chipatlas/pkg/config"
)

const (
	previewColumns   = 5
	previewTableRows = 10
	previewCellWidth = 24
)

// runnerFactory builds the pipeline for the fetch command. Tests replace it
// to avoid touching the network or the real cache directory.
var runnerFactory = func(cfg *config.Config) (*pipeline.Runner, error) {
	return pipeline.NewRunner(cfg)
}

func newFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch GENE",
		Short: "Fetch ChIP-Atlas metadata matching a gene or antigen keyword",
		Long: `Fetch downloads the requested metadata table (cached after the first run),
filters it by the given keyword, prints a preview, and saves the full result
set as CSV under the results directory.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runFetch,
	}
	cmd.Flags().StringP("metadata-type", "t", "experiment_list",
		"Metadata table to search ("+catalog.TypesUsage()+")")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	keyword := args[0]
	metadataType, _ := cmd.Flags().GetString("metadata-type")
	quiet, _ := cmd.Flags().GetBool("quiet")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg.Quiet = cfg.Quiet || quiet

	runner, err := runnerFactory(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	out := cmd.OutOrStdout()
	outcome := runner.Fetch(metadataType, keyword)
	switch outcome.Status {
	case pipeline.StatusSuccess:
		fmt.Fprintf(out, "Found %d entries for %q in %s\n", outcome.Matches.Len(), keyword, metadataType)
		fmt.Fprint(out, previewTable(outcome.Matches))
		if outcome.SavedPath != "" {
			fmt.Fprintf(out, "Results saved to %s\n", outcome.SavedPath)
		}
		return nil
	case pipeline.StatusNoData:
		return fmt.Errorf("no data for %q in %s: %w", keyword, metadataType, outcome.Err)
	default:
		return outcome.Err
	}
}

// previewTable renders the first rows and columns of a match set as an
// aligned ASCII table.
func previewTable(ms *filter.MatchSet) string {
	columns := ms.Columns
	if len(columns) > previewColumns {
		columns = columns[:previewColumns]
	}
	rows := ms.Rows
	if len(rows) > previewTableRows {
		rows = rows[:previewTableRows]
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cell := make([]string, len(columns))
		for i, col := range columns {
			cell[i], _ = row.Get(col)
		}
		cells = append(cells, cell)
	}
	return ascii.Table(columns, cells, previewCellWidth)
}
