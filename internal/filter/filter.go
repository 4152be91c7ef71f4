// Package filter detects the most relevant column of a metadata table and
// applies a case-insensitive keyword filter to it.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shrihari-lab/chipatlas/internal/table"
	"github.com/shrihari-lab/chipatlas/pkg/logger"
)

var (
	// ErrNoSuitableColumn reports a table with no antigen-like column and
	// no "Cell type" fallback.
	ErrNoSuitableColumn = errors.New("no suitable column")

	// ErrNoMatches reports a valid query with an empty result. Callers
	// treat it as "no data", not a hard error.
	ErrNoMatches = errors.New("no matches")
)

// MatchSet is the transient subset of table rows whose detected column
// contains the keyword. Row order follows the source table.
type MatchSet struct {
	Column  string
	Keyword string
	Columns []string
	Rows    []table.Row
}

// Len returns the number of matched rows.
func (m *MatchSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// DetectColumn picks the filter column. Priority: exact case-insensitive
// "antigen", then the shortest column containing "antigen" (original order
// breaks length ties), then the literal "Cell type".
func DetectColumn(columns []string) (string, error) {
	for _, c := range columns {
		if strings.EqualFold(strings.TrimSpace(c), "antigen") {
			return c, nil
		}
	}

	best := ""
	for _, c := range columns {
		if !strings.Contains(strings.ToLower(c), "antigen") {
			continue
		}
		if best == "" || len(c) < len(best) {
			best = c
		}
	}
	if best != "" {
		return best, nil
	}

	for _, c := range columns {
		if c == "Cell type" {
			return c, nil
		}
	}

	return "", ErrNoSuitableColumn
}

// Apply filters the table by case-insensitive substring containment of the
// keyword in the detected column. Rows with no value in that column never
// match and never error.
func Apply(t *table.Table, keyword string) (*MatchSet, error) {
	if t == nil {
		return nil, ErrNoSuitableColumn
	}

	column, err := DetectColumn(t.Columns)
	if err != nil {
		return nil, err
	}
	logger.Debug("filtering table", logger.String("column", column), logger.String("keyword", keyword))

	needle := strings.ToLower(keyword)
	matched := make([]table.Row, 0)
	for _, row := range t.Rows {
		value, ok := row.Get(column)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			matched = append(matched, row)
		}
	}

	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %q in column %q", ErrNoMatches, keyword, column)
	}

	return &MatchSet{
		Column:  column,
		Keyword: keyword,
		Columns: t.Columns,
		Rows:    matched,
	}, nil
}
