//go:build !proj

package projection

import (
	"errors"

	"github.com/samirrijal/vertexgen/internal/core/ports"
)

func newPROJ() (ports.CoordinateTransformer, error) {
	return nil, errors.New("libproj backend not available: rebuild with -tags proj")
}
