package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrihari-lab/chipatlas/pkg/buildinfo"
)

func TestVersionCommand(t *testing.T) {
	root, out := newTestRoot("version")
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), buildinfo.BinaryVersion)
	assert.Contains(t, out.String(), buildinfo.Author)
}

func TestVersionCommandJSON(t *testing.T) {
	root, out := newTestRoot("version", "--json")
	require.NoError(t, root.Execute())

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, buildinfo.BinaryVersion, info["version"])
	assert.Equal(t, buildinfo.Author, info["author"])
	assert.NotEmpty(t, info["goVersion"])
}

func TestRootVersionFlag(t *testing.T) {
	root, out := newTestRoot("--version")
	require.NoError(t, root.Execute())
	assert.Equal(t, "chipatlas "+buildinfo.BinaryVersion+"\n", out.String())
}
