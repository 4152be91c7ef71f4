// Package catalog defines the fixed set of ChIP-Atlas metadata dumps the
// tool knows how to retrieve.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const archiveBase = "https://dbarchive.biosciencedbc.jp/data/chip-atlas/LATEST/"

// Spec describes one metadata dump: where the archive lives and which local
// filenames the extracted table may carry. Specs are immutable.
type Spec struct {
	Type       string
	ArchiveURL string
	// Filenames are checked in order; the archive has shipped both
	// tab- and comma-separated variants over time.
	Filenames []string
}

// ErrUnknownType reports a metadata type that is not in the catalog.
var ErrUnknownType = errors.New("unknown metadata type")

var specs = buildSpecs(
	"experiment_list",
	"file_list",
	"analysis_list",
	"antigen_list",
	"celltype_list",
)

func buildSpecs(types ...string) map[string]*Spec {
	m := make(map[string]*Spec, len(types))
	for _, t := range types {
		base := "chip_atlas_" + t
		m[t] = &Spec{
			Type:       t,
			ArchiveURL: archiveBase + base + ".zip",
			Filenames:  []string{base + ".tsv", base + ".csv"},
		}
	}
	return m
}

// Lookup returns the spec for a metadata type. Unknown types fail without
// any side effects.
func Lookup(metadataType string) (*Spec, error) {
	spec, ok := specs[metadataType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, metadataType)
	}
	return spec, nil
}

// Types returns all known metadata type names, sorted.
func Types() []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypesUsage renders the type names for CLI help text.
func TypesUsage() string {
	return strings.Join(Types(), ", ")
}
