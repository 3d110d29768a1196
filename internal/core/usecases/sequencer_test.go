package usecases_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

var algorithms = []domain.SequencingAlgorithm{domain.AlgorithmSortByAzimuth, domain.AlgorithmGreedyWalk}

func prepare(t *testing.T, points []domain.GeoPoint, policy domain.ReferencePolicy) ([]domain.GeoPoint, domain.Anchor) {
	t.Helper()
	anchor, err := usecases.SelectAnchor(points, policy)
	if err != nil {
		t.Fatalf("select anchor: %v", err)
	}
	return usecases.ApplyBearings(points, anchor), anchor
}

func positions(points []domain.SequencedPoint) [][2]float64 {
	out := make([][2]float64, len(points))
	for i, p := range points {
		out[i] = [2]float64{p.Latitude, p.Longitude}
	}
	return out
}

func TestSequence_FourPoint(t *testing.T) {
	tests := []struct {
		policy domain.ReferencePolicy
		want   [][2]float64
	}{
		// (-1,0) carries the southern false northing, the largest raw value.
		{domain.PolicyExtremePoint, [][2]float64{{-1, 0}, {0, 1}, {0, 0}, {1, 0}}},
		{domain.PolicyNorthernmost, [][2]float64{{1, 0}, {0, 1}, {0, 0}, {-1, 0}}},
	}
	for _, tt := range tests {
		points, anchor := prepare(t, geoPoints([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1}, [2]float64{-1, 0}), tt.policy)
		for _, algo := range algorithms {
			seq, err := usecases.Sequence(points, anchor, algo, 2)
			if err != nil {
				t.Fatalf("%s/%s: unexpected error: %v", tt.policy, algo, err)
			}
			if got := positions(seq); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s/%s: expected order %v, got %v", tt.policy, algo, tt.want, got)
			}
			for i, label := range []string{"P-01", "P-02", "P-03", "P-04"} {
				if seq[i].Label != label || seq[i].SequenceIndex != i {
					t.Errorf("%s/%s: position %d: expected %s, got %s (%d)", tt.policy, algo, i, label, seq[i].Label, seq[i].SequenceIndex)
				}
			}
		}
	}
}

func TestSequence_SinglePoint(t *testing.T) {
	points, anchor := prepare(t, geoPoints([2]float64{-8, -35}), domain.PolicyExtremePoint)

	for _, algo := range algorithms {
		seq, err := usecases.Sequence(points, anchor, algo, 2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", algo, err)
		}
		if len(seq) != 1 || seq[0].Label != "P-01" {
			t.Errorf("%s: expected a single P-01, got %+v", algo, seq)
		}
	}
}

func TestSequence_CentroidSquare(t *testing.T) {
	points, anchor := prepare(t, geoPoints([2]float64{-1, -1}, [2]float64{1, 1}, [2]float64{1, -1}, [2]float64{-1, 1}), domain.PolicyCentroid)

	wantAz := []float64{225, 45, 315, 135}
	for i, p := range points {
		if math.Abs(p.Azimuth-wantAz[i]) > 1e-9 {
			t.Errorf("point %d: expected azimuth %v, got %v", i, wantAz[i], p.Azimuth)
		}
	}

	want := [][2]float64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}
	for _, algo := range algorithms {
		seq, err := usecases.Sequence(points, anchor, algo, 2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", algo, err)
		}
		if got := positions(seq); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: expected order %v, got %v", algo, want, got)
		}
	}
}

func TestSequence_SortRotatesAnchorFirst(t *testing.T) {
	// The first point shares the anchor's azimuth of 0 and precedes it in
	// input order; the anchor must still lead the traversal.
	points := []domain.GeoPoint{
		{Point: domain.Point{Index: 0}, Azimuth: 0},
		{Point: domain.Point{Index: 1}, Azimuth: 0},
		{Point: domain.Point{Index: 2}, Azimuth: 90},
	}
	anchor := domain.Anchor{MemberIndex: 1}

	seq, err := usecases.Sequence(points, anchor, domain.AlgorithmSortByAzimuth, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []int{seq[0].Index, seq[1].Index, seq[2].Index}
	if !reflect.DeepEqual(got, []int{1, 2, 0}) {
		t.Errorf("expected [1 2 0], got %v", got)
	}
}

func TestSequence_GreedyWrapsPastNorth(t *testing.T) {
	points := []domain.GeoPoint{
		{Point: domain.Point{Index: 0}, Azimuth: 10},
		{Point: domain.Point{Index: 1}, Azimuth: 200},
		{Point: domain.Point{Index: 2}, Azimuth: 350},
		{Point: domain.Point{Index: 3}, Azimuth: 5},
	}
	anchor := domain.Anchor{MemberIndex: 1}

	seq, err := usecases.Sequence(points, anchor, domain.AlgorithmGreedyWalk, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []int{seq[0].Index, seq[1].Index, seq[2].Index, seq[3].Index}
	if !reflect.DeepEqual(got, []int{1, 2, 3, 0}) {
		t.Errorf("expected [1 2 3 0], got %v", got)
	}
}

func TestSequence_GreedySyntheticStartsAtNorth(t *testing.T) {
	points := []domain.GeoPoint{
		{Point: domain.Point{Index: 0}, Azimuth: 270},
		{Point: domain.Point{Index: 1}, Azimuth: 0},
		{Point: domain.Point{Index: 2}, Azimuth: 90},
	}
	anchor := domain.Anchor{MemberIndex: -1}

	seq, err := usecases.Sequence(points, anchor, domain.AlgorithmGreedyWalk, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []int{seq[0].Index, seq[1].Index, seq[2].Index}
	if !reflect.DeepEqual(got, []int{1, 2, 0}) {
		t.Errorf("expected [1 2 0], got %v", got)
	}
}

func TestSequence_BijectionAndDeterminism(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for round := 0; round < 20; round++ {
		n := 1 + rng.IntN(60)
		pairs := make([][2]float64, n)
		for i := range pairs {
			pairs[i] = [2]float64{-8 + rng.Float64()*0.2, -35 + rng.Float64()*0.2}
		}
		for _, policy := range []domain.ReferencePolicy{domain.PolicyExtremePoint, domain.PolicyCentroid} {
			points, anchor := prepare(t, geoPoints(pairs...), policy)
			for _, algo := range algorithms {
				first, err := usecases.Sequence(points, anchor, algo, 2)
				if err != nil {
					t.Fatalf("%s/%s: unexpected error: %v", policy, algo, err)
				}
				if len(first) != n {
					t.Fatalf("%s/%s: expected %d points, got %d", policy, algo, n, len(first))
				}
				seen := make(map[int]bool, n)
				for _, p := range first {
					if seen[p.Index] {
						t.Fatalf("%s/%s: point %d placed twice", policy, algo, p.Index)
					}
					seen[p.Index] = true
					if p.Azimuth < 0 || p.Azimuth >= 360 {
						t.Fatalf("azimuth %v out of range", p.Azimuth)
					}
				}
				again, _ := usecases.Sequence(points, anchor, algo, 2)
				if !reflect.DeepEqual(first, again) {
					t.Fatalf("%s/%s: sequencing is not deterministic", policy, algo)
				}
				if anchor.IsMember() && first[0].Index != anchor.MemberIndex {
					t.Errorf("%s/%s: expected anchor first, got %d", policy, algo, first[0].Index)
				}
			}
		}
	}
}

func TestSequence_Errors(t *testing.T) {
	if _, err := usecases.Sequence(nil, domain.Anchor{MemberIndex: -1}, domain.AlgorithmGreedyWalk, 2); !errors.Is(err, domain.ErrEmptyPointSet) {
		t.Errorf("expected ErrEmptyPointSet, got %v", err)
	}

	points := geoPoints([2]float64{0, 0})
	if _, err := usecases.Sequence(points, domain.Anchor{MemberIndex: 3}, domain.AlgorithmGreedyWalk, 2); !errors.Is(err, domain.ErrSequencingInvariant) {
		t.Errorf("expected ErrSequencingInvariant, got %v", err)
	}
	if _, err := usecases.Sequence(points, domain.Anchor{MemberIndex: 0}, "spiral", 2); !domain.IsKind(err, domain.KindInvalidOptions) {
		t.Errorf("expected invalid options, got %v", err)
	}
}

func TestLabels(t *testing.T) {
	cases := []struct {
		configured, n int
		seq           int
		want          string
	}{
		{2, 4, 1, "P-01"},
		{2, 99, 99, "P-99"},
		{2, 100, 7, "P-007"},
		{2, 120, 120, "P-120"},
		{4, 10, 3, "P-0003"},
		{0, 5, 5, "P-05"},
	}
	for _, tc := range cases {
		width := usecases.EffectiveLabelWidth(tc.configured, tc.n)
		if got := usecases.Label(tc.seq, width); got != tc.want {
			t.Errorf("Label(%d) with width %d/%d = %q, want %q", tc.seq, tc.configured, tc.n, got, tc.want)
		}
	}
}
