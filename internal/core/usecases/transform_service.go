package usecases

import (
	"context"
	"errors"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/core/ports"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

// TransformService converts input points to WGS 84 and to the UTM zone each
// point falls in.
type TransformService struct {
	transformer ports.CoordinateTransformer
}

// NewTransformService creates a new TransformService.
func NewTransformService(transformer ports.CoordinateTransformer) *TransformService {
	return &TransformService{transformer: transformer}
}

// Transform returns one GeoPoint per input point, in input order. Zones are
// computed per point and never harmonised across the set. The first failing
// point aborts the whole stage.
func (s *TransformService) Transform(ctx context.Context, points []domain.Point) ([]domain.GeoPoint, error) {
	if len(points) == 0 {
		return nil, &domain.EmptyPointSetError{Stage: domain.StageTransform}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.GeoPoint, 0, len(points))
	for _, p := range points {
		lat, lon, err := s.transformer.ToGeographic(p.X, p.Y, p.SourceCRS)
		if err != nil {
			return nil, pointTransformError("geographic", p, err)
		}

		zone := geospatial.UTMZone(lon)
		northing, easting, err := s.transformer.ToUTM(lat, lon, zone)
		if err != nil {
			return nil, pointTransformError("utm", p, err)
		}

		out = append(out, domain.GeoPoint{
			Point:       p,
			Latitude:    lat,
			Longitude:   lon,
			UTMZone:     zone,
			UTMEasting:  easting,
			UTMNorthing: northing,
		})
	}
	return out, nil
}

// pointTransformError ties a backend failure to the input point it came from.
func pointTransformError(stage string, p domain.Point, err error) error {
	var te *domain.TransformError
	if errors.As(err, &te) {
		cp := *te
		cp.Index = p.Index
		cp.X, cp.Y = p.X, p.Y
		if cp.CRS == "" {
			cp.CRS = p.SourceCRS
		}
		return &cp
	}
	return &domain.TransformError{
		Stage: stage,
		Index: p.Index,
		X:     p.X,
		Y:     p.Y,
		CRS:   p.SourceCRS,
		Err:   err,
	}
}
