package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownTypes(t *testing.T) {
	for _, name := range []string{
		"experiment_list",
		"file_list",
		"analysis_list",
		"antigen_list",
		"celltype_list",
	} {
		spec, err := Lookup(name)
		require.NoError(t, err, "type %s", name)
		require.NotNil(t, spec)

		assert.Equal(t, name, spec.Type)
		assert.Equal(t,
			"https://dbarchive.biosciencedbc.jp/data/chip-atlas/LATEST/chip_atlas_"+name+".zip",
			spec.ArchiveURL)
		assert.Equal(t,
			[]string{"chip_atlas_" + name + ".tsv", "chip_atlas_" + name + ".csv"},
			spec.Filenames)
	}
}

func TestLookupUnknownType(t *testing.T) {
	spec, err := Lookup("invalid_type")
	assert.Nil(t, spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "invalid_type")
}

func TestTypesSorted(t *testing.T) {
	types := Types()
	assert.Equal(t, []string{
		"analysis_list",
		"antigen_list",
		"celltype_list",
		"experiment_list",
		"file_list",
	}, types)
}

func TestTypesUsage(t *testing.T) {
	usage := TypesUsage()
	assert.Contains(t, usage, "experiment_list")
	assert.Contains(t, usage, ", ")
}
