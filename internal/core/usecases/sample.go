package usecases

import (
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// Sample generator defaults.
const (
	DefaultSampleRegion = "recife"
	DefaultSamplePoints = 10
	DefaultSampleSeed   = 42
	SampleCRS           = "EPSG:4326"
)

// SampleRegions are the areas sample points can be drawn from.
var SampleRegions = map[string]domain.Bounds{
	"recife":    {MinLat: -8.1, MaxLat: -7.9, MinLon: -35.0, MaxLon: -34.8},
	"sao_paulo": {MinLat: -23.65, MaxLat: -23.45, MinLon: -46.8, MaxLon: -46.6},
	"rio":       {MinLat: -23.0, MaxLat: -22.8, MinLon: -43.3, MaxLon: -43.1},
	"brasilia":  {MinLat: -15.9, MaxLat: -15.7, MinLon: -48.0, MaxLon: -47.8},
}

// SampleRegionNames returns the known regions in alphabetical order.
func SampleRegionNames() []string {
	return slices.Sorted(maps.Keys(SampleRegions))
}

// GenerateSample draws n uniformly distributed WGS 84 points inside region.
// The same seed always yields the same set. Unknown regions fall back to
// DefaultSampleRegion; the region actually used is returned.
func GenerateSample(region string, n int, seed uint64) (domain.PointSet, string, error) {
	if n <= 0 {
		return domain.PointSet{}, "", fmt.Errorf("sample size must be positive, got %d", n)
	}
	bounds, ok := SampleRegions[region]
	if !ok {
		slog.Warn("unknown sample region, using default", "region", region, "default", DefaultSampleRegion)
		region = DefaultSampleRegion
		bounds = SampleRegions[region]
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	lats := make([]float64, n)
	for i := range lats {
		lats[i] = bounds.MinLat + rng.Float64()*(bounds.MaxLat-bounds.MinLat)
	}
	lons := make([]float64, n)
	for i := range lons {
		lons[i] = bounds.MinLon + rng.Float64()*(bounds.MaxLon-bounds.MinLon)
	}

	points := make([]domain.Point, n)
	for i := range points {
		points[i] = domain.Point{
			Index:        i,
			X:            lons[i],
			Y:            lats[i],
			SourceCRS:    SampleCRS,
			GeometryType: "Point",
			Properties: map[string]any{
				"id":   i + 1,
				"nome": fmt.Sprintf("Ponto %d", i+1),
			},
		}
	}
	return domain.PointSet{
		Name:      "pontos_exemplo_" + region,
		SourceCRS: SampleCRS,
		Points:    points,
	}, region, nil
}

// AsCollection returns set unchanged in order, ready for a collection writer.
func AsCollection(set domain.PointSet) domain.PointCollection {
	coll := domain.PointCollection{Name: set.Name, SourceCRS: set.SourceCRS}
	for _, p := range set.Points {
		coll.Features = append(coll.Features, domain.Feature{X: p.X, Y: p.Y, Properties: p.Properties})
	}
	return coll
}
