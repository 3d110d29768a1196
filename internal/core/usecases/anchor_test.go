package usecases_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/usecases"
)

func geoPoints(pairs ...[2]float64) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(pairs))
	for i, p := range pairs {
		northing := p[0] * 110574
		if p[0] < 0 {
			northing += 10_000_000
		}
		out[i] = domain.GeoPoint{
			Point:       domain.Point{Index: i, X: p[1], Y: p[0], GeometryType: "Point"},
			Latitude:    p[0],
			Longitude:   p[1],
			UTMNorthing: northing,
		}
	}
	return out
}

func TestSelectAnchor_ExtremePoint(t *testing.T) {
	points := geoPoints([2]float64{10, 0}, [2]float64{11, 0}, [2]float64{10, 1}, [2]float64{9, 0})

	anchor, err := usecases.SelectAnchor(points, domain.PolicyExtremePoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.MemberIndex != 1 {
		t.Fatalf("expected point 1 as anchor, got %d", anchor.MemberIndex)
	}
	if anchor.Latitude != 11 || anchor.Longitude != 0 {
		t.Errorf("unexpected anchor position %v, %v", anchor.Latitude, anchor.Longitude)
	}
	if !anchor.IsMember() {
		t.Error("extreme point anchor must be a member")
	}
}

func TestSelectAnchor_ExtremePoint_TieKeepsFirst(t *testing.T) {
	points := geoPoints([2]float64{-8, -35}, [2]float64{-7.9, -34.9}, [2]float64{-7.9, -34.8})

	anchor, err := usecases.SelectAnchor(points, domain.PolicyExtremePoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.MemberIndex != 1 {
		t.Errorf("expected first of the tied points, got %d", anchor.MemberIndex)
	}
}

func TestSelectAnchor_ExtremePoint_Southern(t *testing.T) {
	points := geoPoints([2]float64{-8.1, -35}, [2]float64{-7.95, -34.9}, [2]float64{-8.0, -34.8})

	anchor, err := usecases.SelectAnchor(points, domain.PolicyExtremePoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.MemberIndex != 1 {
		t.Errorf("expected the northernmost point, got %d", anchor.MemberIndex)
	}
}

func TestSelectAnchor_StraddlingEquator(t *testing.T) {
	points := []domain.GeoPoint{
		{Point: domain.Point{Index: 0}, Latitude: 0.5, Longitude: -35, UTMNorthing: 55_300},
		{Point: domain.Point{Index: 1}, Latitude: -0.5, Longitude: -35, UTMNorthing: 9_944_700},
	}

	tests := []struct {
		policy domain.ReferencePolicy
		want   int
	}{
		{domain.PolicyExtremePoint, 1},
		{domain.PolicyNorthernmost, 0},
	}
	for _, tt := range tests {
		anchor, err := usecases.SelectAnchor(points, tt.policy)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.policy, err)
		}
		if anchor.MemberIndex != tt.want {
			t.Errorf("%s: expected member %d, got %d", tt.policy, tt.want, anchor.MemberIndex)
		}
		if anchor.UTMNorthing != points[tt.want].UTMNorthing {
			t.Errorf("%s: expected the member's raw northing, got %v", tt.policy, anchor.UTMNorthing)
		}
	}
}

func TestSelectAnchor_Centroid(t *testing.T) {
	points := geoPoints([2]float64{1, 1}, [2]float64{1, -1}, [2]float64{-1, -1}, [2]float64{-1, 1})

	anchor, err := usecases.SelectAnchor(points, domain.PolicyCentroid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.IsMember() || anchor.MemberIndex != -1 {
		t.Errorf("centroid must be synthetic, got member %d", anchor.MemberIndex)
	}
	if math.Abs(anchor.Latitude) > 1e-12 || math.Abs(anchor.Longitude) > 1e-12 {
		t.Errorf("expected centroid at origin, got %v, %v", anchor.Latitude, anchor.Longitude)
	}
}

func TestSelectAnchor_SinglePoint(t *testing.T) {
	points := geoPoints([2]float64{-8, -35})

	for _, policy := range []domain.ReferencePolicy{domain.PolicyExtremePoint, domain.PolicyNorthernmost, domain.PolicyCentroid} {
		anchor, err := usecases.SelectAnchor(points, policy)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", policy, err)
		}
		if anchor.Latitude != -8 || anchor.Longitude != -35 {
			t.Errorf("%s: expected the point itself, got %v, %v", policy, anchor.Latitude, anchor.Longitude)
		}
		bearings := usecases.ApplyBearings(points, anchor)
		if bearings[0].Azimuth != 0 {
			t.Errorf("%s: expected azimuth 0, got %v", policy, bearings[0].Azimuth)
		}
	}
}

func TestSelectAnchor_Errors(t *testing.T) {
	if _, err := usecases.SelectAnchor(nil, domain.PolicyExtremePoint); !errors.Is(err, domain.ErrEmptyPointSet) {
		t.Errorf("expected ErrEmptyPointSet, got %v", err)
	}
	if _, err := usecases.SelectAnchor(geoPoints([2]float64{0, 0}), "farthest"); !errors.Is(err, domain.ErrInvalidOptions) {
		t.Errorf("expected ErrInvalidOptions, got %v", err)
	}
}

func TestApplyBearings_DoesNotMutateInput(t *testing.T) {
	points := geoPoints([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{0, 1})
	anchor := domain.Anchor{Latitude: 1, Longitude: 0, MemberIndex: 1}

	out := usecases.ApplyBearings(points, anchor)
	for i, p := range points {
		if p.Azimuth != 0 {
			t.Errorf("input point %d was mutated", i)
		}
	}
	want := []float64{180, 0, 135}
	for i, p := range out {
		if math.Abs(p.Azimuth-want[i]) > 1e-9 {
			t.Errorf("point %d: expected azimuth %v, got %v", i, want[i], p.Azimuth)
		}
	}
}
