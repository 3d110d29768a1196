//go:build proj

package projection

import "github.com/samirrijal/vertexgen/internal/core/ports"

func newPROJ() (ports.CoordinateTransformer, error) {
	return NewPJTransformer()
}
