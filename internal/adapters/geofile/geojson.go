package geofile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// DefaultCRS applies to inputs that name no CRS at all.
const DefaultCRS = "EPSG:4326"

// GeoJSON reads and writes point FeatureCollections. The source CRS travels
// in the legacy "crs" member ({"type":"name","properties":{"name":...}});
// documents without one are read in CRS.
type GeoJSON struct {
	CRS string
}

// NewGeoJSON creates a codec that assumes crs for documents without a crs
// member. An empty crs means DefaultCRS.
func NewGeoJSON(crs string) *GeoJSON {
	if crs == "" {
		crs = DefaultCRS
	}
	return &GeoJSON{CRS: crs}
}

// Read decodes a FeatureCollection. Non-point features are kept with their
// geometry type so validation can report them.
func (g *GeoJSON) Read(ctx context.Context, r io.Reader) (*domain.PointSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	fallback := g.CRS
	if fallback == "" {
		fallback = DefaultCRS
	}
	set := &domain.PointSet{SourceCRS: fallback, Points: make([]domain.Point, 0, len(fc.Features))}
	if crs := crsName(fc.ExtraMembers["crs"]); crs != "" {
		set.SourceCRS = crs
	}
	if name, ok := fc.ExtraMembers["name"].(string); ok {
		set.Name = name
	}

	for i, f := range fc.Features {
		p := domain.Point{
			Index:        i,
			SourceCRS:    set.SourceCRS,
			GeometryType: "Null",
			Properties:   map[string]any(f.Properties),
		}
		if f.Geometry != nil {
			p.GeometryType = f.Geometry.GeoJSONType()
			if pt, ok := f.Geometry.(orb.Point); ok {
				p.X, p.Y = pt.X(), pt.Y()
			}
		}
		set.Points = append(set.Points, p)
	}
	return set, nil
}

// WriteCollection encodes the collection as a FeatureCollection in its
// source CRS.
func (g *GeoJSON) WriteCollection(ctx context.Context, w io.Writer, c domain.PointCollection) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range c.Features {
		feature := geojson.NewFeature(orb.Point{f.X, f.Y})
		feature.Properties = geojson.Properties(f.Properties)
		fc.Append(feature)
	}

	fc.ExtraMembers = geojson.Properties{}
	if c.Name != "" {
		fc.ExtraMembers["name"] = c.Name
	}
	if c.SourceCRS != "" && !strings.EqualFold(c.SourceCRS, DefaultCRS) {
		fc.ExtraMembers["crs"] = map[string]any{
			"type":       "name",
			"properties": map[string]any{"name": c.SourceCRS},
		}
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}

// crsName extracts properties.name from a named crs member.
func crsName(member any) string {
	m, ok := member.(map[string]any)
	if !ok {
		return ""
	}
	props, ok := m["properties"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := props["name"].(string)
	return strings.TrimSpace(name)
}
