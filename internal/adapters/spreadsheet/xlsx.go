package spreadsheet

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// SheetName is the worksheet holding the coordinate table.
const SheetName = "VERTICES"

// XLSX writes the coordinate table as an Excel workbook.
type XLSX struct{}

// NewXLSX creates a new XLSX writer.
func NewXLSX() *XLSX { return &XLSX{} }

// WriteTable writes a header row with the table columns followed by one row
// per point. Header styling is cosmetic.
func (XLSX) WriteTable(ctx context.Context, w io.Writer, rows []domain.TableRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(domain.TableColumns))
	for i, c := range domain.TableColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(domain.TableColumns), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.Values()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(domain.TableColumns))
	_ = f.SetColWidth(SheetName, "A", lastCol, 18)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
