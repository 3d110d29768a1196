package usecases

import (
	"fmt"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

// SelectAnchor picks the origin of every bearing of the run.
//
// With PolicyExtremePoint the anchor is the point with the greatest UTM
// northing as reported by each point's own zone and hemisphere; ties go to the
// earliest point. Southern northings carry the 10,000,000 m false northing, so
// in a set straddling the equator a southern point wins. PolicyNorthernmost
// compares the same northings with the false northing removed, so the
// northern edge of such a set wins instead. With PolicyCentroid it is the mean
// latitude/longitude of the set, which is not itself an output point.
// MemberIndex refers to the position in points.
func SelectAnchor(points []domain.GeoPoint, policy domain.ReferencePolicy) (domain.Anchor, error) {
	if len(points) == 0 {
		return domain.Anchor{}, &domain.EmptyPointSetError{Stage: domain.StageAnchor}
	}

	switch policy {
	case domain.PolicyExtremePoint, domain.PolicyNorthernmost:
		northing := rawNorthing
		if policy == domain.PolicyNorthernmost {
			northing = continuousNorthing
		}
		best := 0
		for i := 1; i < len(points); i++ {
			if northing(points[i]) > northing(points[best]) {
				best = i
			}
		}
		return domain.Anchor{
			Latitude:    points[best].Latitude,
			Longitude:   points[best].Longitude,
			UTMNorthing: points[best].UTMNorthing,
			MemberIndex: best,
			Policy:      policy,
		}, nil

	case domain.PolicyCentroid:
		var sumLat, sumLon float64
		for _, p := range points {
			sumLat += p.Latitude
			sumLon += p.Longitude
		}
		n := float64(len(points))
		return domain.Anchor{
			Latitude:    sumLat / n,
			Longitude:   sumLon / n,
			MemberIndex: -1,
			Policy:      policy,
		}, nil
	}

	return domain.Anchor{}, &domain.OptionsError{
		Problems: []string{fmt.Sprintf("reference policy %q is not supported", policy)},
	}
}

func rawNorthing(p domain.GeoPoint) float64 { return p.UTMNorthing }

// continuousNorthing removes the southern false northing so northings of both
// hemispheres share one axis.
func continuousNorthing(p domain.GeoPoint) float64 {
	if geospatial.IsSouthern(p.Latitude) {
		return p.UTMNorthing - geospatial.SouthFalseNorthing
	}
	return p.UTMNorthing
}

// ApplyBearings returns a copy of points with every azimuth measured from
// the anchor. The input slice is left untouched.
func ApplyBearings(points []domain.GeoPoint, anchor domain.Anchor) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(points))
	for i, p := range points {
		out[i] = p.WithAzimuth(azimuthFrom(anchor, p))
	}
	return out
}
