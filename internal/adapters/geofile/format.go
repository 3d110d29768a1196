package geofile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samirrijal/vertexgen/internal/core/ports"
)

// Codec reads point sets and writes point collections in one file format.
type Codec interface {
	ports.PointReader
	ports.CollectionWriter
}

// ForPath picks the codec matching a file extension. crs applies to inputs
// that do not name their own CRS.
func ForPath(path, crs string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return NewGeoJSON(crs), nil
	case ".csv", ".wkt":
		return NewWKTCSV(crs), nil
	}
	return nil, fmt.Errorf("unsupported point file %q (expected .geojson, .json or .csv)", path)
}
