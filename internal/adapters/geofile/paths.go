package geofile

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputName is the base name of generated files.
const DefaultOutputName = "VERTICES_GERADOS"

// NormalizeOutputPath resolves where an output with extension ext (".xlsx",
// ".geojson", ...) is written. An empty path yields the default name, an
// existing directory receives the default name inside it and a path without
// extension gets ext appended.
func NormalizeOutputPath(path, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if path == "" {
		return DefaultOutputName + ext
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, DefaultOutputName+ext)
	}
	if filepath.Ext(path) == "" {
		return path + ext
	}
	return path
}
