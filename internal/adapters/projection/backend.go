package projection

import (
	"fmt"

	"github.com/samirrijal/vertexgen/internal/core/ports"
)

// Backend names accepted by New.
const (
	BackendPure = "pure"
	BackendPROJ = "proj"
)

// New returns the transformer for the named backend.
func New(backend string) (ports.CoordinateTransformer, error) {
	switch backend {
	case "", BackendPure:
		return NewTransformer()
	case BackendPROJ:
		return newPROJ()
	}
	return nil, fmt.Errorf("unknown transform backend %q (expected %s|%s)", backend, BackendPure, BackendPROJ)
}
