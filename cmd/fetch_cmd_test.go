package cmd

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrihari-lab/chipatlas/internal/acquire"
	"github.com/shrihari-lab/chipatlas/internal/pipeline"
	"github.com/shrihari-lab/chipatlas/internal/results"
	"github.com/shrihari-lab/chipatlas/pkg/config"
)

const experimentURL = "https://dbarchive.biosciencedbc.jp/data/chip-atlas/LATEST/chip_atlas_experiment_list.zip"

func zipArchive(t *testing.T, members map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// newTestRoot builds an isolated command tree with captured output.
func newTestRoot(args ...string) (*cobra.Command, *bytes.Buffer) {
	root := newRootCommand()
	registerSubcommands(root)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	return root, out
}

// stubRunner points runnerFactory at a pipeline backed by a mock fetcher and
// temp directories. The returned func restores the original factory.
func stubRunner(t *testing.T, mock *acquire.MockHTTPFetcher) func() {
	t.Helper()

	base := t.TempDir()
	original := runnerFactory
	runnerFactory = func(cfg *config.Config) (*pipeline.Runner, error) {
		return pipeline.NewRunnerWith(
			acquire.NewWithFetcher(base, mock),
			results.New(filepath.Join(base, "results")),
			pipeline.Options{Quiet: true},
		), nil
	}
	return func() { runnerFactory = original }
}

func TestFetchCommandSuccess(t *testing.T) {
	mock := acquire.NewMockHTTPFetcher()
	mock.AddResponse(experimentURL, 200, zipArchive(t, map[string]string{
		"chip_atlas_experiment_list.tsv": "Antigen\tCell type\nTP53\tBlood\nBRCA1\tLiver\n",
	}))
	defer stubRunner(t, mock)()

	root, out := newTestRoot("fetch", "TP53")
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), `Found 1 entries for "TP53" in experiment_list`)
	assert.Contains(t, out.String(), "Antigen")
	assert.Contains(t, out.String(), "Blood")
	assert.Contains(t, out.String(), "chip_atlas_TP53_experiment_list.csv")
	assert.NotContains(t, out.String(), "BRCA1")
}

func TestFetchCommandMetadataTypeFlag(t *testing.T) {
	mock := acquire.NewMockHTTPFetcher()
	mock.AddResponse(
		"https://dbarchive.biosciencedbc.jp/data/chip-atlas/LATEST/chip_atlas_antigen_list.zip",
		200, zipArchive(t, map[string]string{
			"chip_atlas_antigen_list.tsv": "Antigen\tExperiments\nTP53\t42\n",
		}))
	defer stubRunner(t, mock)()

	root, out := newTestRoot("fetch", "TP53", "--metadata-type", "antigen_list")
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "antigen_list")
	assert.Contains(t, out.String(), "42")
}

func TestFetchCommandNoData(t *testing.T) {
	mock := acquire.NewMockHTTPFetcher()
	mock.AddResponse(experimentURL, 200, zipArchive(t, map[string]string{
		"chip_atlas_experiment_list.tsv": "Antigen\tCell type\nBRCA1\tLiver\n",
	}))
	defer stubRunner(t, mock)()

	root, _ := newTestRoot("fetch", "TP53")
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestFetchCommandUnknownType(t *testing.T) {
	defer stubRunner(t, acquire.NewMockHTTPFetcher())()

	root, _ := newTestRoot("fetch", "TP53", "--metadata-type", "protein_list")
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metadata type")
}

func TestFetchCommandRequiresKeyword(t *testing.T) {
	root, _ := newTestRoot("fetch")
	assert.Error(t, root.Execute())
}
