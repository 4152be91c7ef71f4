package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/shrihari-lab/chipatlas/pkg/logger"
	"github.com/shrihari-lab/chipatlas/pkg/safeio"
)

// ErrParseFailed reports a table that stayed unreadable after the encoding
// and delimiter fallbacks.
var ErrParseFailed = errors.New("parse failed")

// Load reads the metadata file at path (which must live under baseDir) and
// parses it into a Table. Tab-separated files use the tab delimiter; anything
// else is sniffed, and a parse that yields a single column is retried with an
// explicit comma. Files that are not valid UTF-8 are re-decoded as Latin-1.
func Load(baseDir, path string) (*Table, error) {
	raw, err := safeio.ReadFileContained(baseDir, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	text, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	sep := sniffDelimiter(path, text)
	records, err := parse(text, sep)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	// A one-column result usually means the delimiter was misdetected.
	if len(records) > 0 && len(records[0]) == 1 && sep != ',' {
		logger.Debug("single-column parse, retrying with comma delimiter",
			logger.String("path", path))
		if retried, err := parse(text, ','); err == nil {
			records = retried
		}
	}

	t, err := build(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	logger.Debug("loaded table",
		logger.String("path", path),
		logger.Int("columns", len(t.Columns)),
		logger.Int("rows", len(t.Rows)))
	return t, nil
}

// decode returns the file content as UTF-8 text, falling back to a Latin-1
// reinterpretation when the bytes are not valid UTF-8. The archive mixes
// both encodings across dumps.
func decode(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("latin-1 fallback: %v", err)
	}
	return string(decoded), nil
}

// sniffDelimiter picks the delimiter: tab for .tsv filenames, otherwise the
// most frequent of tab/comma/semicolon on the header line.
func sniffDelimiter(path, text string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}

	header := text
	if idx := strings.IndexByte(header, '\n'); idx >= 0 {
		header = header[:idx]
	}

	best, bestCount := ',', 0
	for _, cand := range []rune{'\t', ',', ';'} {
		if n := strings.Count(header, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

func parse(text string, sep rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sep
	r.FieldsPerRecord = -1 // archive rows vary in width
	r.LazyQuotes = true
	return r.ReadAll()
}

// build assembles records into a Table, trimming header whitespace and
// keeping column names unique.
func build(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("empty table")
	}

	seen := make(map[string]int)
	columns := make([]string, 0, len(records[0]))
	for _, name := range records[0] {
		name = strings.TrimSpace(name)
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 1
		}
		columns = append(columns, name)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: columns, Rows: rows}, nil
}
