// Package table loads archive metadata dumps into an all-strings tabular
// structure, tolerant of the delimiter and encoding variance the archive
// ships with.
package table

// Row maps a trimmed column name to its string value.
type Row map[string]string

// Table is an ordered sequence of rows under a unique, whitespace-trimmed
// header. Values are never coerced; heterogeneous archive data stays as
// strings.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Get returns the value of a column in a row, with ok=false when the row has
// no value for it.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}
