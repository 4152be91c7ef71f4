package table

import (
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadTSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "chip_atlas_experiment_list.tsv",
		[]byte("Experimental ID\tAntigen\tCell type\nEXP001\tTP53\tBlood\nEXP002\tTP53BP1\tBone\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Experimental ID", "Antigen", "Cell type"}, tab.Columns)
	require.Equal(t, 2, tab.Len())
	assert.Equal(t, Row{"Experimental ID": "EXP001", "Antigen": "TP53", "Cell type": "Blood"}, tab.Rows[0])
}

func TestLoadCSVSniffed(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "chip_atlas_experiment_list.csv",
		[]byte("Antigen,Cell type\nTP53,Blood\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Antigen", "Cell type"}, tab.Columns)
	assert.Equal(t, "TP53", tab.Rows[0]["Antigen"])
}

func TestLoadSemicolonSniffed(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "dump.csv",
		[]byte("Antigen;Cell type\nTP53;Blood\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Antigen", "Cell type"}, tab.Columns)
}

func TestLoadSingleColumnRetriesWithComma(t *testing.T) {
	dir := t.TempDir()
	// Misnamed dump: .tsv extension but comma-separated content. The tab
	// parse yields one column, which triggers the comma retry.
	path := writeFixture(t, dir, "chip_atlas_file_list.tsv",
		[]byte("Antigen,Cell type\nTP53,Blood\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Antigen", "Cell type"}, tab.Columns)
	assert.Equal(t, "Blood", tab.Rows[0]["Cell type"])
}

func TestLoadLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	// " Antigen ,Cell type" header with padding plus a raw 0xE9 ("é" in
	// Latin-1) in the data, which is invalid UTF-8.
	content := append([]byte(" Antigen ,Cell type\nTP53,Caf"), 0xE9, '\n')
	path := writeFixture(t, dir, "chip_atlas_celltype_list.csv", content)

	tab, err := Load(dir, path)
	require.NoError(t, err)

	// Column names are trimmed even on the fallback path
	assert.Equal(t, []string{"Antigen", "Cell type"}, tab.Columns)
	require.Equal(t, 1, tab.Len())

	cell := tab.Rows[0]["Cell type"]
	assert.True(t, utf8.ValidString(cell), "fallback decode must produce valid UTF-8")
	assert.Equal(t, "Café", cell)
}

func TestLoadTrimsColumnNames(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "dump.csv",
		[]byte("  Antigen  , Cell type \nTP53,Blood\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Antigen", "Cell type"}, tab.Columns)
}

func TestLoadDeduplicatesColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "dump.csv",
		[]byte("Antigen,Antigen\nTP53,BRCA1\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Antigen", "Antigen_1"}, tab.Columns)
	assert.Equal(t, "TP53", tab.Rows[0]["Antigen"])
	assert.Equal(t, "BRCA1", tab.Rows[0]["Antigen_1"])
}

func TestLoadRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "dump.csv",
		[]byte("Antigen,Cell type,Title\nTP53,Blood\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)
	require.Equal(t, 1, tab.Len())

	_, ok := tab.Rows[0].Get("Title")
	assert.False(t, ok, "short rows leave trailing columns absent")
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "dump.csv", nil)

	_, err := Load(dir, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir, filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestLoadRejectsFileOutsideBase(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	path := writeFixture(t, other, "dump.csv", []byte("Antigen\nTP53\n"))

	_, err := Load(dir, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestHeaderOnlyTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "dump.csv", []byte("Antigen,Cell type\n"))

	tab, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, 0, tab.Len())
}
