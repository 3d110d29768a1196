package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors for broad classification; every pipeline error matches
// exactly one of them through errors.Is.
var (
	ErrTransform           = errors.New("coordinate transform failed")
	ErrEmptyPointSet       = errors.New("empty point set")
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
	ErrSequencingInvariant = errors.New("sequencing invariant violated")
	ErrInvalidOptions      = errors.New("invalid options")
)

// Run history errors. They are not pipeline errors and carry no Kind.
var (
	ErrRunNotFound     = errors.New("run not found")
	ErrHistoryDisabled = errors.New("run history is not configured")
)

// ErrorKind is a coarse-grained categorization for pipeline errors.
type ErrorKind string

const (
	KindTransform           ErrorKind = "transform"
	KindEmptyPointSet       ErrorKind = "empty_point_set"
	KindUnsupportedGeometry ErrorKind = "unsupported_geometry"
	KindSequencingInvariant ErrorKind = "sequencing_invariant"
	KindInvalidOptions      ErrorKind = "invalid_options"
)

// kinded is implemented by every error type in this file.
type kinded interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first pipeline error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return "", false
}

// IsKind helps callers classify errors without depending on concrete types.
func IsKind(err error, kind ErrorKind) bool {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind() == kind
	}
	return false
}

// IsCallerError reports whether err was caused by the input rather than by
// the pipeline itself.
func IsCallerError(err error) bool {
	return IsKind(err, KindEmptyPointSet) ||
		IsKind(err, KindUnsupportedGeometry) ||
		IsKind(err, KindInvalidOptions) ||
		IsKind(err, KindTransform)
}

// TransformError reports a coordinate that could not be reprojected.
type TransformError struct {
	Stage string // "geographic" or "utm"
	Index int    // input position, -1 when not tied to a point
	X, Y  float64
	CRS   string
	Err   error
}

func (e *TransformError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("transform %s", e.Stage)
	if e.Index >= 0 {
		base += fmt.Sprintf(" point %d", e.Index)
	}
	base += fmt.Sprintf(" (%g, %g) crs=%q", e.X, e.Y, e.CRS)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *TransformError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *TransformError) Is(target error) bool { return target == ErrTransform }
func (e *TransformError) Kind() ErrorKind      { return KindTransform }

// EmptyPointSetError is returned when a stage receives no points.
type EmptyPointSetError struct {
	Stage string
}

func (e *EmptyPointSetError) Error() string {
	if e.Stage == "" {
		return ErrEmptyPointSet.Error()
	}
	return fmt.Sprintf("%s: %s", e.Stage, ErrEmptyPointSet)
}

func (e *EmptyPointSetError) Is(target error) bool { return target == ErrEmptyPointSet }
func (e *EmptyPointSetError) Kind() ErrorKind      { return KindEmptyPointSet }

// UnsupportedGeometryError lists the input features that are not single points.
type UnsupportedGeometryError struct {
	Offending map[int]string // input index -> geometry type
}

func (e *UnsupportedGeometryError) Error() string {
	parts := make([]string, 0, len(e.Offending))
	for _, idx := range slices.Sorted(maps.Keys(e.Offending)) {
		parts = append(parts, fmt.Sprintf("#%d=%s", idx, e.Offending[idx]))
	}
	return fmt.Sprintf("%s: only Point features are accepted (%s)", ErrUnsupportedGeometry, strings.Join(parts, ", "))
}

func (e *UnsupportedGeometryError) Is(target error) bool { return target == ErrUnsupportedGeometry }
func (e *UnsupportedGeometryError) Kind() ErrorKind      { return KindUnsupportedGeometry }

// SequencingInvariantError signals a bug in the sequencer. It must never be
// swallowed: the output would silently lose points.
type SequencingInvariantError struct {
	Algorithm SequencingAlgorithm
	Expected  int
	Placed    int
	Detail    string
}

func (e *SequencingInvariantError) Error() string {
	return fmt.Sprintf("%s: %s placed %d of %d points: %s",
		ErrSequencingInvariant, e.Algorithm, e.Placed, e.Expected, e.Detail)
}

func (e *SequencingInvariantError) Is(target error) bool { return target == ErrSequencingInvariant }
func (e *SequencingInvariantError) Kind() ErrorKind      { return KindSequencingInvariant }

// OptionsError collects every invalid option of a run.
type OptionsError struct {
	Problems []string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("%s:\n  - %s", ErrInvalidOptions, strings.Join(e.Problems, "\n  - "))
}

func (e *OptionsError) Is(target error) bool { return target == ErrInvalidOptions }
func (e *OptionsError) Kind() ErrorKind      { return KindInvalidOptions }
