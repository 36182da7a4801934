// Package xlsx exports the climate table as a spreadsheet.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

var header = []any{"ESTACIÓN", "VALOR MEDIO DE", "MES", "VALOR", "LATITUD", "LONGITUD"}

// Exporter writes joined records to a single-sheet workbook.
// It implements pipeline.Exporter.
type Exporter struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewExporter creates an exporter writing sheet into the workbook at path.
// Sheet names longer than Excel's 31 character limit are truncated; an empty
// name becomes "datos".
func NewExporter(path, sheet string, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, sheet: sheetName(sheet), logger: logger}
}

func sheetName(name string) string {
	if name == "" {
		return "datos"
	}
	if r := []rune(name); len(r) > excelize.MaxSheetNameLength {
		return string(r[:excelize.MaxSheetNameLength])
	}
	return name
}

// Name identifies the exporter in logs and metrics.
func (e *Exporter) Name() string { return "xlsx" }

// Export writes a header row followed by one row per record. Nil values are
// left blank. An existing workbook at the path is replaced.
func (e *Exporter) Export(ctx context.Context, records []domain.JoinedRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(e.sheet)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Station, r.Variable, r.Month, cellValue(r.Value), cellValue(r.Lat), cellValue(r.Lon)}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", e.path, err)
	}
	e.logger.Info("workbook written", "path", e.path, "rows", len(records))
	return nil
}

func cellValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
