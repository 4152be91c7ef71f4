// Package results writes filtered match sets to the results directory as
// CSV exports keyed by keyword and metadata type.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shrihari-lab/chipatlas/internal/filter"
	"github.com/shrihari-lab/chipatlas/pkg/logger"
)

// ErrPersistFailed reports an I/O failure while writing an export. It is
// reported to the caller, never propagated as a crash.
var ErrPersistFailed = errors.New("persist failed")

// Persister writes exports into a fixed directory, created on demand.
type Persister struct {
	dir string
}

// New creates a Persister targeting dir.
func New(dir string) *Persister {
	return &Persister{dir: dir}
}

// Filename returns the deterministic export name for a keyword and type.
func Filename(keyword, metadataType string) string {
	return fmt.Sprintf("chip_atlas_%s_%s.csv", keyword, metadataType)
}

// Save writes all columns and all matched rows as comma-separated UTF-8 with
// a single header row. An empty or absent match set is a logged no-op and
// returns an empty path with no error.
func (p *Persister) Save(ms *filter.MatchSet, keyword, metadataType string) (string, error) {
	if ms.Len() == 0 {
		logger.Info("no data to save",
			logger.String("keyword", keyword),
			logger.String("type", metadataType))
		return "", nil
	}

	if err := os.MkdirAll(p.dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: create results directory: %v", ErrPersistFailed, err)
	}

	path := filepath.Join(p.dir, Filename(keyword, metadataType))
	f, err := os.Create(path) // #nosec G304 -- path built from the fixed results directory
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(ms.Columns); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: write header: %v", ErrPersistFailed, err)
	}

	record := make([]string, len(ms.Columns))
	for _, row := range ms.Rows {
		for i, col := range ms.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("%w: write row: %v", ErrPersistFailed, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	logger.Info("full dataset saved",
		logger.String("path", path),
		logger.Int("rows", ms.Len()))
	return path, nil
}
