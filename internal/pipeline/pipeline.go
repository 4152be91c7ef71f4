// Package pipeline wires catalog, acquirer, loader, filter and persister
// into the fetch-cache-parse-filter flow. Every taxonomy failure degrades to
// a no-data outcome; errors never escape the pipeline boundary.
package pipeline

import (
	"github.com/shrihari-lab/chipatlas/internal/acquire"
	"github.com/shrihari-lab/chipatlas/internal/filter"
	"github.com/shrihari-lab/chipatlas/internal/results"
	"github.com/shrihari-lab/chipatlas/internal/table"
	"github.com/shrihari-lab/chipatlas/pkg/config"
	"github.com/shrihari-lab/chipatlas/pkg/logger"
)

// Status classifies a pipeline outcome for callers.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNoData  Status = "no_data"
	StatusError   Status = "error"
)

// Outcome is the explicit result variant returned by Fetch. It replaces
// exception control flow: Err carries the reason when Status is not success,
// or a non-fatal persist failure when it is.
type Outcome struct {
	Status    Status
	Matches   *filter.MatchSet
	SavedPath string
	Err       error
}

// Options configures one pipeline invocation.
type Options struct {
	// Quiet drops the pipeline's informational progress output.
	Quiet bool
}

// Runner owns the pipeline components for repeated fetches. Tables are never
// cached; every Fetch re-parses from disk.
type Runner struct {
	acquirer  *acquire.Acquirer
	persister *results.Persister
	opts      Options
}

// NewRunner builds a Runner from configuration, resolving the cache and
// results directories.
func NewRunner(cfg *config.Config) (*Runner, error) {
	home, err := config.EnsureAtlasHome()
	if err != nil {
		return nil, err
	}
	resultsDir, err := cfg.EnsureResultsDir()
	if err != nil {
		return nil, err
	}
	return NewRunnerWith(
		acquire.New(home, cfg.Fetch.Timeout),
		results.New(resultsDir),
		Options{Quiet: cfg.Quiet},
	), nil
}

// NewRunnerWith builds a Runner from explicit components, for tests and the
// tool server.
func NewRunnerWith(acq *acquire.Acquirer, persister *results.Persister, opts Options) *Runner {
	return &Runner{acquirer: acq, persister: persister, opts: opts}
}

// Fetch runs the full pipeline for one metadata type and keyword: ensure a
// local file, load it, filter it, save the matches.
func (r *Runner) Fetch(metadataType, keyword string) Outcome {
	path, err := r.acquirer.EnsureLocalFile(metadataType)
	if err != nil {
		r.report("no local data available", metadataType, err)
		return Outcome{Status: StatusNoData, Err: err}
	}

	tab, err := table.Load(r.acquirer.BaseDir(), path)
	if err != nil {
		r.report("failed to load table", metadataType, err)
		return Outcome{Status: StatusNoData, Err: err}
	}

	ms, err := filter.Apply(tab, keyword)
	if err != nil {
		r.report("no entries found", metadataType, err)
		return Outcome{Status: StatusNoData, Err: err}
	}

	if !r.opts.Quiet {
		logger.Info("matches found",
			logger.String("keyword", keyword),
			logger.String("type", metadataType),
			logger.Int("rows", ms.Len()))
	}

	saved, err := r.persister.Save(ms, keyword, metadataType)
	if err != nil {
		// The matches are still good; the failed export is reported,
		// not escalated.
		logger.Error("failed to save results", logger.Err(err))
		return Outcome{Status: StatusSuccess, Matches: ms, Err: err}
	}

	return Outcome{Status: StatusSuccess, Matches: ms, SavedPath: saved}
}

func (r *Runner) report(msg, metadataType string, err error) {
	if r.opts.Quiet {
		return
	}
	logger.Warn(msg, logger.String("type", metadataType), logger.Err(err))
}
