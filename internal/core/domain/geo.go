package domain

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Point is one input feature in its source reference system.
type Point struct {
	Index        int            `json:"index"` // position in the input set
	X            float64        `json:"x"`
	Y            float64        `json:"y"`
	SourceCRS    string         `json:"source_crs"`
	GeometryType string         `json:"geometry_type"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// PointSet is an ordered input collection sharing one source CRS.
type PointSet struct {
	Name      string  `json:"name,omitempty"`
	SourceCRS string  `json:"source_crs"`
	Points    []Point `json:"points"`
}

// GeoPoint is a Point annotated with WGS 84 and UTM coordinates.
// Azimuth is zero until the anchor of the run is known.
type GeoPoint struct {
	Point
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	UTMZone     int     `json:"utm_zone"`
	UTMEasting  float64 `json:"utm_easting"`
	UTMNorthing float64 `json:"utm_northing"`
	Azimuth     float64 `json:"azimuth"`
}

// WithAzimuth returns a copy of g carrying the given azimuth.
func (g GeoPoint) WithAzimuth(az float64) GeoPoint {
	g.Azimuth = az
	return g
}

// SequencedPoint is a GeoPoint with its final traversal position.
type SequencedPoint struct {
	GeoPoint
	Label         string `json:"label"`
	SequenceIndex int    `json:"sequence_index"`
}

// Anchor is the origin every bearing of a run is measured from. It is either
// an input point (MemberIndex >= 0) or a synthetic centroid (MemberIndex == -1).
type Anchor struct {
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	UTMNorthing float64         `json:"utm_northing"`
	MemberIndex int             `json:"member_index"`
	Policy      ReferencePolicy `json:"policy"`
}

// IsMember reports whether the anchor coincides with an input point.
func (a Anchor) IsMember() bool {
	return a.MemberIndex >= 0
}
