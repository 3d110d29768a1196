package spreadsheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/samirrijal/vertexgen/internal/core/domain"
	"github.com/samirrijal/vertexgen/internal/pkg/geospatial"
)

// CSV writes the coordinate table as comma separated values.
type CSV struct{}

// NewCSV creates a new CSV writer.
func NewCSV() *CSV { return &CSV{} }

// WriteTable writes the header followed by one line per point. Meters are
// always rendered with three decimals.
func (CSV) WriteTable(ctx context.Context, w io.Writer, rows []domain.TableRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.TableColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Label,
			r.Latitude,
			r.Longitude,
			strconv.FormatFloat(r.Easting, 'f', geospatial.MeterDecimals, 64),
			strconv.FormatFloat(r.Northing, 'f', geospatial.MeterDecimals, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
