package usecases

import (
	"slices"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

// BuildTable renders sequenced points as coordinate table rows.
func BuildTable(points []domain.SequencedPoint) []domain.TableRow {
	rows := make([]domain.TableRow, len(points))
	for i, p := range points {
		rows[i] = domain.TableRow{
			Label:     p.Label,
			Latitude:  geospatial.ToSexagesimal(p.Latitude),
			Longitude: geospatial.ToSexagesimal(p.Longitude),
			Easting:   geospatial.Round(p.UTMEasting, geospatial.MeterDecimals),
			Northing:  geospatial.Round(p.UTMNorthing, geospatial.MeterDecimals),
		}
	}
	return rows
}

// BuildCollection returns the sequenced points in their original, untransformed
// coordinates, carrying the table fields as properties.
func BuildCollection(name, sourceCRS string, points []domain.SequencedPoint, rows []domain.TableRow) domain.PointCollection {
	features := make([]domain.Feature, len(points))
	for i, p := range points {
		row := rows[i]
		features[i] = domain.Feature{
			X: p.X,
			Y: p.Y,
			Properties: map[string]any{
				domain.ColumnLabel:            row.Label,
				domain.ColumnLatitude:         row.Latitude,
				domain.ColumnLongitude:        row.Longitude,
				domain.ColumnEasting:          row.Easting,
				domain.ColumnNorthing:         row.Northing,
				domain.ColumnZone:             p.UTMZone,
				domain.ColumnLatitudeDecimal:  geospatial.Round(p.Latitude, geospatial.DegreeDecimals),
				domain.ColumnLongitudeDecimal: geospatial.Round(p.Longitude, geospatial.DegreeDecimals),
			},
		}
	}
	return domain.PointCollection{Name: name, SourceCRS: sourceCRS, Features: features}
}

// Summarize derives the run summary from the traversal.
func Summarize(points []domain.SequencedPoint) domain.Summary {
	lats := make([]float64, len(points))
	lons := make([]float64, len(points))
	var zones []int
	for i, p := range points {
		lats[i] = p.Latitude
		lons[i] = p.Longitude
		if !slices.Contains(zones, p.UTMZone) {
			zones = append(zones, p.UTMZone)
		}
	}
	slices.Sort(zones)

	minLat, minLon, maxLat, maxLon := geospatial.Extent(lats, lons)
	return domain.Summary{
		PointCount:      len(points),
		Zones:           zones,
		PerimeterMeters: geospatial.Round(geospatial.RingLength(lats, lons), geospatial.MeterDecimals),
		Bounds:          domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon},
	}
}
