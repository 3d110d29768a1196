package domain

import (
	"fmt"
	"strings"
)

// ReferencePolicy selects how the anchor of a run is chosen.
type ReferencePolicy string

const (
	// PolicyExtremePoint anchors on the point with the greatest UTM northing.
	PolicyExtremePoint ReferencePolicy = "extreme_point"
	// PolicyNorthernmost anchors on the point with the greatest latitude in
	// UTM terms: southern northings lose their false northing before the
	// comparison, so a set straddling the equator anchors on its northern edge.
	PolicyNorthernmost ReferencePolicy = "northernmost"
	// PolicyCentroid anchors on the mean latitude/longitude of all points.
	PolicyCentroid ReferencePolicy = "centroid"
)

// SequencingAlgorithm selects how points are ordered around the anchor.
type SequencingAlgorithm string

const (
	AlgorithmSortByAzimuth SequencingAlgorithm = "sort_by_azimuth"
	AlgorithmGreedyWalk    SequencingAlgorithm = "greedy_walk"
)

// MinLabelWidth is the narrowest zero padding a label index can use.
const MinLabelWidth = 2

// Options is the configuration surface of one pipeline run.
type Options struct {
	ReferencePolicy ReferencePolicy     `json:"reference_policy"`
	Algorithm       SequencingAlgorithm `json:"algorithm"`
	LabelWidth      int                 `json:"label_width"`
}

// DefaultOptions mirrors the behaviour of the original spreadsheet tool.
func DefaultOptions() Options {
	return Options{
		ReferencePolicy: PolicyExtremePoint,
		Algorithm:       AlgorithmSortByAzimuth,
		LabelWidth:      MinLabelWidth,
	}
}

// WithDefaults fills zero-valued fields of o from def.
func (o Options) WithDefaults(def Options) Options {
	if o.ReferencePolicy == "" {
		o.ReferencePolicy = def.ReferencePolicy
	}
	if o.Algorithm == "" {
		o.Algorithm = def.Algorithm
	}
	if o.LabelWidth == 0 {
		o.LabelWidth = def.LabelWidth
	}
	return o
}

// Validate checks that every option holds a supported value.
func (o Options) Validate() error {
	var errs []string
	switch o.ReferencePolicy {
	case PolicyExtremePoint, PolicyNorthernmost, PolicyCentroid:
	default:
		errs = append(errs, fmt.Sprintf("reference policy %q is not supported", o.ReferencePolicy))
	}
	switch o.Algorithm {
	case AlgorithmSortByAzimuth, AlgorithmGreedyWalk:
	default:
		errs = append(errs, fmt.Sprintf("sequencing algorithm %q is not supported", o.Algorithm))
	}
	if o.LabelWidth < MinLabelWidth {
		errs = append(errs, fmt.Sprintf("label width must be >= %d, got %d", MinLabelWidth, o.LabelWidth))
	}
	if len(errs) > 0 {
		return &OptionsError{Problems: errs}
	}
	return nil
}

// ParseReferencePolicy accepts the canonical names plus the short CLI forms.
func ParseReferencePolicy(s string) (ReferencePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "extreme_point", "extreme-point", "extreme":
		return PolicyExtremePoint, nil
	case "northernmost", "north":
		return PolicyNorthernmost, nil
	case "centroid", "center":
		return PolicyCentroid, nil
	}
	return "", fmt.Errorf("unknown reference policy %q (expected extreme_point|northernmost|centroid)", s)
}

// ParseSequencingAlgorithm accepts the canonical names plus the short CLI forms.
func ParseSequencingAlgorithm(s string) (SequencingAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sort_by_azimuth", "sort-by-azimuth", "sort":
		return AlgorithmSortByAzimuth, nil
	case "greedy_walk", "greedy-walk", "greedy", "walk":
		return AlgorithmGreedyWalk, nil
	}
	return "", fmt.Errorf("unknown sequencing algorithm %q (expected sort_by_azimuth|greedy_walk)", s)
}
