package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"bank-reconciliation-service/internal/models"
)

const (
	MatchStatusSheet = "Match Status"
	SummarySheet     = "Summary"
)

// generateXLSXReport writes the flat export to a Match Status sheet, filling
// every status cell with its outcome color, plus an optional Summary sheet
func (rg *ReportGenerator) generateXLSXReport(report *Report, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MatchStatusSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStatusStyles(f)
	if err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, MatchStatusSheet, 1, stringsToValues(report.Columns)); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(report.Columns))
	if err := f.SetCellStyle(MatchStatusSheet, "A1", lastCol+"1", header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range report.Rows {
		values := make([]interface{}, 0, len(row.Cells)+1)
		for _, cell := range row.Cells {
			values = append(values, cellValue(cell))
		}
		values = append(values, string(row.Status))

		if err := writeRow(f, MatchStatusSheet, i+2, values); err != nil {
			return err
		}
		statusCell, _ := excelize.CoordinatesToCellName(len(report.Columns), i+2)
		if err := f.SetCellStyle(MatchStatusSheet, statusCell, statusCell, styles[row.Status]); err != nil {
			return fmt.Errorf("failed to style status cell %s: %w", statusCell, err)
		}
	}

	if len(report.Rows) > 0 {
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(report.Rows)+1)
		if err := f.AutoFilter(MatchStatusSheet, ref, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}
	if err := f.SetColWidth(MatchStatusSheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if rg.config.IncludeSummarySheet {
		if err := writeSummarySheet(f, report, styles, header); err != nil {
			return err
		}
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *Report, styles map[models.Status]int, header int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	row := 1
	put := func(values ...interface{}) error {
		err := writeRow(f, SummarySheet, row, values)
		row++
		return err
	}

	if err := put("Status", "Count"); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", header); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	for _, c := range report.Counts {
		if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles[c.Status]); err != nil {
			return fmt.Errorf("failed to style summary row: %w", err)
		}
		if err := put(c.Label, c.Count); err != nil {
			return err
		}
	}

	metadata := [][]interface{}{
		{"Total", report.Total},
		{},
		{"Match Rate", fmt.Sprintf("%.1f%%", report.MatchRate)},
		{"Account Type", string(report.AccountType)},
		{"Amount Column", report.AmountColumn},
		{"Fuzzy Threshold", report.FuzzyThreshold},
		{"Run ID", report.RunID},
		{"Generated At", report.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Source", "File", "Path", "Sheet", "Rows"},
	}
	for _, values := range metadata {
		if err := put(values...); err != nil {
			return err
		}
	}
	for _, source := range report.Sources {
		if err := put(source.Role, source.Name, source.Path, source.Sheet, source.Rows); err != nil {
			return err
		}
	}

	return f.SetColWidth(SummarySheet, "A", "E", 22)
}

func newStatusStyles(f *excelize.File) (map[models.Status]int, error) {
	styles := make(map[models.Status]int)
	for _, status := range models.AllStatuses() {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{status.Color()}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create style for %s: %w", status, err)
		}
		styles[status] = id
	}
	return styles, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// cellValue maps a cell to the value excelize stores natively
func cellValue(c models.Cell) interface{} {
	switch c.Kind {
	case models.CellText:
		return c.Text
	case models.CellNumber:
		return c.Number.InexactFloat64()
	case models.CellDate:
		return c.Time
	default:
		return nil
	}
}

func stringsToValues(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
