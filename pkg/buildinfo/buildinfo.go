package buildinfo

import "runtime/debug"

// BinaryVersion is set at build time via -ldflags. Defaults to "0.1.0".
var BinaryVersion = "0.1.0"

// Author is the package author reported by the version surfaces.
var Author = "Shrihari"

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}
