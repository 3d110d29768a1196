package usecases

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

// LabelPrefix precedes the sequence number of every output label.
const LabelPrefix = "P-"

func azimuthFrom(anchor domain.Anchor, p domain.GeoPoint) float64 {
	return geospatial.Azimuth(p.Longitude, p.Latitude, anchor.Longitude, anchor.Latitude)
}

// Sequence orders points clockwise around the anchor and labels them
// P-01, P-02, ... Every input point appears exactly once in the output and
// the result depends only on the input order and values.
func Sequence(points []domain.GeoPoint, anchor domain.Anchor, algo domain.SequencingAlgorithm, labelWidth int) ([]domain.SequencedPoint, error) {
	if len(points) == 0 {
		return nil, &domain.EmptyPointSetError{Stage: domain.StageSequence}
	}
	if anchor.IsMember() && anchor.MemberIndex >= len(points) {
		return nil, &domain.SequencingInvariantError{
			Algorithm: algo,
			Expected:  len(points),
			Detail:    fmt.Sprintf("anchor member %d out of range", anchor.MemberIndex),
		}
	}

	var order []int
	switch algo {
	case domain.AlgorithmSortByAzimuth:
		order = sortByAzimuth(points, anchor)
	case domain.AlgorithmGreedyWalk:
		order = greedyWalk(points, anchor)
	default:
		return nil, &domain.OptionsError{
			Problems: []string{fmt.Sprintf("sequencing algorithm %q is not supported", algo)},
		}
	}

	if err := checkBijection(order, len(points), algo); err != nil {
		return nil, err
	}

	width := EffectiveLabelWidth(labelWidth, len(points))
	out := make([]domain.SequencedPoint, len(order))
	for seq, idx := range order {
		out[seq] = domain.SequencedPoint{
			GeoPoint:      points[idx],
			Label:         Label(seq+1, width),
			SequenceIndex: seq,
		}
	}
	return out, nil
}

// sortByAzimuth sorts ascending by azimuth, keeping input order on ties, and
// rotates the list so a member anchor comes first.
func sortByAzimuth(points []domain.GeoPoint, anchor domain.Anchor) []int {
	order := identity(len(points))
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(points[a].Azimuth, points[b].Azimuth)
	})
	if !anchor.IsMember() {
		return order
	}
	pos := slices.Index(order, anchor.MemberIndex)
	if pos <= 0 {
		return order
	}
	return slices.Concat(order[pos:], order[:pos])
}

// greedyWalk repeatedly steps to the remaining point with the smallest
// clockwise turn from the current azimuth. Points strictly ahead of the
// current azimuth are preferred; when none are left the walk wraps and every
// remaining point becomes a candidate. A synthetic anchor starts the walk at
// azimuth 0, inclusive.
func greedyWalk(points []domain.GeoPoint, anchor domain.Anchor) []int {
	remaining := identity(len(points))
	order := make([]int, 0, len(points))

	current := 0.0
	inclusive := true
	if anchor.IsMember() {
		order = append(order, anchor.MemberIndex)
		remaining = slices.DeleteFunc(remaining, func(i int) bool { return i == anchor.MemberIndex })
		current = points[anchor.MemberIndex].Azimuth
		inclusive = false
	}

	ahead := func(az float64) bool {
		if inclusive {
			return az >= current
		}
		return az > current
	}

	for len(remaining) > 0 {
		onlyAhead := slices.ContainsFunc(remaining, func(i int) bool { return ahead(points[i].Azimuth) })

		bestPos := -1
		bestTurn := math.Inf(1)
		for pos, i := range remaining {
			az := points[i].Azimuth
			if onlyAhead && !ahead(az) {
				continue
			}
			// strict comparison keeps the earliest input on ties
			if turn := geospatial.ForwardAngle(current, az); turn < bestTurn {
				bestPos, bestTurn = pos, turn
			}
		}

		next := remaining[bestPos]
		order = append(order, next)
		remaining = slices.Delete(remaining, bestPos, bestPos+1)
		current = points[next].Azimuth
		inclusive = false
	}
	return order
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func checkBijection(order []int, n int, algo domain.SequencingAlgorithm) error {
	if len(order) != n {
		return &domain.SequencingInvariantError{
			Algorithm: algo,
			Expected:  n,
			Placed:    len(order),
			Detail:    "output size differs from input size",
		}
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return &domain.SequencingInvariantError{
				Algorithm: algo,
				Expected:  n,
				Placed:    len(order),
				Detail:    fmt.Sprintf("point %d placed twice or out of range", idx),
			}
		}
		seen[idx] = true
	}
	return nil
}

// EffectiveLabelWidth widens the configured zero padding so that every label
// of a set of n points has the same length.
func EffectiveLabelWidth(configured, n int) int {
	return max(configured, domain.MinLabelWidth, len(strconv.Itoa(n)))
}

// Label renders the label of the seq-th point (1-based).
func Label(seq, width int) string {
	return fmt.Sprintf("%s%0*d", LabelPrefix, width, seq)
}
