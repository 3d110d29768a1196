package geofile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// geometryColumns are the header names recognised as the WKT column.
var geometryColumns = []string{"wkt", "geometry", "geom", "the_geom"}

// WKTCSV reads and writes CSV files carrying one WKT geometry per row.
// CSV has no place for a CRS, so it is configured on the codec; an EWKT
// SRID prefix on a row overrides it. All rows of a file must resolve to the
// same CRS.
type WKTCSV struct {
	CRS string
}

// NewWKTCSV creates a codec for files in the given CRS.
func NewWKTCSV(crs string) *WKTCSV {
	if crs == "" {
		crs = DefaultCRS
	}
	return &WKTCSV{CRS: crs}
}

// Read decodes rows into points. Every column other than the geometry
// becomes a string property.
func (c *WKTCSV) Read(ctx context.Context, r io.Reader) (*domain.PointSet, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	geomCol := slices.IndexFunc(header, func(h string) bool {
		return slices.Contains(geometryColumns, strings.ToLower(strings.TrimSpace(h)))
	})
	if geomCol < 0 {
		return nil, fmt.Errorf("csv header has no geometry column (one of %s)", strings.Join(geometryColumns, ", "))
	}

	set := &domain.PointSet{SourceCRS: c.CRS}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		crs, text := splitEWKT(record[geomCol], c.CRS)
		g, err := wkt.Unmarshal(text)
		if err != nil {
			return nil, fmt.Errorf("parse wkt on line %d: %w", line, err)
		}
		if len(set.Points) == 0 {
			set.SourceCRS = crs
		} else if crs != set.SourceCRS {
			return nil, fmt.Errorf("line %d is in %s but earlier rows are in %s; mixed CRS in one file is not supported", line, crs, set.SourceCRS)
		}

		p := domain.Point{
			Index:        len(set.Points),
			SourceCRS:    crs,
			GeometryType: geometryType(g),
			Properties:   make(map[string]any, len(header)-1),
		}
		if pt, ok := g.(*geom.Point); ok && !pt.Empty() {
			p.X, p.Y = pt.X(), pt.Y()
		}
		for i, h := range header {
			if i != geomCol && i < len(record) {
				p.Properties[h] = record[i]
			}
		}
		set.Points = append(set.Points, p)
	}
	return set, nil
}

// collectionColumns is the property order of written collections.
var collectionColumns = []string{
	domain.ColumnLabel,
	domain.ColumnLatitude,
	domain.ColumnLongitude,
	domain.ColumnEasting,
	domain.ColumnNorthing,
	domain.ColumnZone,
	domain.ColumnLatitudeDecimal,
	domain.ColumnLongitudeDecimal,
}

// WriteCollection writes a WKT column followed by the feature properties.
func (c *WKTCSV) WriteCollection(ctx context.Context, w io.Writer, coll domain.PointCollection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"WKT"}, collectionColumns...)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range coll.Features {
		text, err := wkt.Marshal(geom.NewPointFlat(geom.XY, []float64{f.X, f.Y}))
		if err != nil {
			return fmt.Errorf("encode wkt: %w", err)
		}
		row := []string{text}
		for _, col := range collectionColumns {
			row = append(row, cell(f.Properties[col]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// splitEWKT separates an optional "SRID=<code>;" prefix.
func splitEWKT(s, fallback string) (crs, text string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToUpper(s), "SRID=") {
		return fallback, s
	}
	head, rest, ok := strings.Cut(s, ";")
	if !ok {
		return fallback, s
	}
	return "EPSG:" + strings.TrimSpace(head[len("SRID="):]), strings.TrimSpace(rest)
}

func geometryType(g geom.T) string {
	switch t := g.(type) {
	case *geom.Point:
		if t.Empty() {
			return "EmptyPoint"
		}
		return "Point"
	case *geom.MultiPoint:
		return "MultiPoint"
	case *geom.LineString:
		return "LineString"
	case *geom.MultiLineString:
		return "MultiLineString"
	case *geom.Polygon:
		return "Polygon"
	case *geom.MultiPolygon:
		return "MultiPolygon"
	case *geom.GeometryCollection:
		return "GeometryCollection"
	}
	return fmt.Sprintf("%T", g)
}
