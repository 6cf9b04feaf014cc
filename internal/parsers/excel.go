package parsers

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// xlsxWorkbook reads Office Open XML workbooks
type xlsxWorkbook struct {
	source   *SourceFile
	file     *excelize.File
	date1904 bool
	dateFmt  map[int]bool
	log      logger.Logger
}

func openXLSX(source *SourceFile) (*xlsxWorkbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(source.Data))
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, source.DisplayName(), err)
	}

	wb := &xlsxWorkbook{
		source:  source,
		file:    f,
		dateFmt: make(map[int]bool),
		log:     logger.GetGlobalLogger().WithComponent("xlsx_reader").WithField("file", source.DisplayName()),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb, nil
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *xlsxWorkbook) Sheet(name string) (*models.Sheet, error) {
	if idx, _ := w.file.GetSheetIndex(name); idx < 0 {
		return nil, sheetNotFound(w.source, name, w.SheetNames())
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, w.source.DisplayName(), err).
			WithContext("sheet", name)
	}

	grid := make(models.Grid, len(rows))
	for r, row := range rows {
		cells := make([]models.Cell, len(row))
		for c, raw := range row {
			cells[c] = w.cell(name, r, c, raw)
		}
		grid[r] = cells
	}

	w.log.WithFields(logger.Fields{"sheet": name, "rows": len(grid)}).Debug("Read worksheet")
	return &models.Sheet{Name: name, Grid: grid}, nil
}

// cell types a raw value using the cell type and number format recorded in the sheet
func (w *xlsxWorkbook) cell(sheet string, r, c int, raw string) models.Cell {
	if raw == "" {
		return models.EmptyCell()
	}

	axis, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return models.TextCell(raw)
	}

	cellType, _ := w.file.GetCellType(sheet, axis)
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return models.TextCell(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return models.TextCell("TRUE")
		}
		return models.TextCell("FALSE")
	case excelize.CellTypeError:
		return models.EmptyCell()
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return models.DateCell(t)
			}
		}
		return models.TextCell(raw)
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.TextCell(raw)
	}

	if w.isDateStyled(sheet, axis) {
		if t, err := excelize.ExcelDateToTime(serial, w.date1904); err == nil {
			return models.DateCell(t)
		}
	}

	if d, ok := models.ParseNumber(raw); ok {
		return models.NumberCell(d)
	}
	if d := decimal.NewFromFloat(serial); models.InNumberRange(d) {
		return models.NumberCell(d)
	}
	return models.TextCell(raw)
}

func (w *xlsxWorkbook) isDateStyled(sheet, axis string) bool {
	styleID, err := w.file.GetCellStyle(sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if cached, ok := w.dateFmt[styleID]; ok {
		return cached
	}

	isDate := false
	if style, err := w.file.GetStyle(styleID); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isBuiltInDateFormat(style.NumFmt)
		}
	}
	w.dateFmt[styleID] = isDate
	return isDate
}

func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format renders a date or time.
// Quoted literals, bracketed sections and escaped characters are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}

	stripped := strings.ToLower(b.String())
	if stripped == "general" {
		return false
	}
	return strings.ContainsAny(stripped, "ymdhs")
}

// xlsWorkbook reads legacy BIFF workbooks
type xlsWorkbook struct {
	source *SourceFile
	book   *xls.WorkBook
	names  []string
}

func openXLS(source *SourceFile) (*xlsWorkbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(source.Data), "utf-8")
	if err != nil {
		return nil, errors.FileError(errors.CodeFileCorrupted, source.DisplayName(), err)
	}

	names := make([]string, 0, book.NumSheets())
	for i := 0; i < book.NumSheets(); i++ {
		if sheet := book.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}

	return &xlsWorkbook{source: source, book: book, names: names}, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	return w.names
}

func (w *xlsWorkbook) Sheet(name string) (*models.Sheet, error) {
	for i := 0; i < w.book.NumSheets(); i++ {
		sheet := w.book.GetSheet(i)
		if sheet == nil || sheet.Name != name {
			continue
		}

		grid := make(models.Grid, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := xlsRow(sheet, r)
			if row == nil {
				grid = append(grid, nil)
				continue
			}
			cells := make([]models.Cell, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells[c] = inferCell(strings.TrimSpace(row.Col(c)))
			}
			grid = append(grid, cells)
		}
		return &models.Sheet{Name: name, Grid: grid}, nil
	}

	return nil, sheetNotFound(w.source, name, w.names)
}

// xlsRow returns row i of sheet, or nil for a row the file has no record of.
// WorkSheet.Row dereferences missing rows, so the panic is recovered here.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
