package spreadsheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samirrijal/vertexgen/internal/core/ports"
)

// ForPath picks the table writer matching a file extension.
func ForPath(path string) (ports.TableWriter, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return NewXLSX(), nil
	case ".csv":
		return NewCSV(), nil
	}
	return nil, fmt.Errorf("unsupported table file %q (expected .xlsx or .csv)", path)
}
