package domain

import "time"

// Column names of the coordinate table, in output order. They are a
// compatibility contract with existing spreadsheets.
const (
	ColumnLabel     = "PONTOS"
	ColumnLatitude  = "LATITUDE"
	ColumnLongitude = "LONGITUDE"
	ColumnEasting   = "ESTE"
	ColumnNorthing  = "NORTE"
	ColumnZone      = "FUSO"

	// Decimal degree columns only present in the point collection.
	ColumnLatitudeDecimal  = "LAT_DEC"
	ColumnLongitudeDecimal = "LON_DEC"
)

// TableColumns lists the table header in order.
var TableColumns = []string{ColumnLabel, ColumnLatitude, ColumnLongitude, ColumnEasting, ColumnNorthing}

// TableRow is one line of the coordinate table.
type TableRow struct {
	Label     string  `json:"PONTOS"`
	Latitude  string  `json:"LATITUDE"`  // sexagesimal
	Longitude string  `json:"LONGITUDE"` // sexagesimal
	Easting   float64 `json:"ESTE"`      // meters, 3 decimals
	Northing  float64 `json:"NORTE"`     // meters, 3 decimals
}

// Values returns the row as spreadsheet cells in TableColumns order.
func (r TableRow) Values() []any {
	return []any{r.Label, r.Latitude, r.Longitude, r.Easting, r.Northing}
}

// Feature is one point of the re-ordered output collection. X and Y are the
// original, untransformed coordinates.
type Feature struct {
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Properties map[string]any `json:"properties"`
}

// PointCollection is the re-ordered point set in the CRS of the input.
type PointCollection struct {
	Name      string    `json:"name,omitempty"`
	SourceCRS string    `json:"source_crs"`
	Features  []Feature `json:"features"`
}

// Summary holds derived facts about a run.
type Summary struct {
	PointCount      int     `json:"point_count"`
	Zones           []int   `json:"zones"`
	PerimeterMeters float64 `json:"perimeter_meters"`
	Bounds          Bounds  `json:"bounds"`
}

// Result is the complete output of a successful pipeline run.
type Result struct {
	RunID      string           `json:"run_id"`
	Options    Options          `json:"options"`
	Anchor     Anchor           `json:"anchor"`
	Points     []SequencedPoint `json:"points"`
	Table      []TableRow       `json:"table"`
	Collection PointCollection  `json:"collection"`
	Summary    Summary          `json:"summary"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Pipeline stage names used in progress notifications, metrics and errors.
const (
	StageValidate  = "validate"
	StageTransform = "transform"
	StageAnchor    = "anchor"
	StageBearing   = "bearing"
	StageSequence  = "sequence"
	StageFormat    = "format"
	StageDone      = "done"
)

// Progress is a coarse-grained notification emitted while a run executes.
type Progress struct {
	RunID   string    `json:"run_id"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// RunRecord is the persisted header of a finished run.
type RunRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	SourceCRS  string    `json:"source_crs"`
	Options    Options   `json:"options"`
	PointCount int       `json:"point_count"`
	Anchor     Anchor    `json:"anchor"`
	Perimeter  float64   `json:"perimeter_meters"`
	CreatedAt  time.Time `json:"created_at"`
}
