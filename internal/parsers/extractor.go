package parsers

import (
	"fmt"
	"strings"
	"unicode"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/logger"
)

// TableExtractor locates the header row in a bank statement sheet and turns
// everything below it into a table with normalised column names
type TableExtractor struct {
	config *BankConfig
	logger logger.Logger
}

// NewTableExtractor creates an extractor. A nil config uses DefaultBankConfig.
func NewTableExtractor(config *BankConfig) *TableExtractor {
	if config == nil {
		config = DefaultBankConfig()
	}
	return &TableExtractor{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("table_extractor"),
	}
}

// Extract builds a table from one sheet. It returns the table and the index of
// the header row, or an empty table and -1 when no header row exists.
func (e *TableExtractor) Extract(sheet *models.Sheet) (*models.Table, int) {
	log := e.logger.WithField("sheet", sheet.Name)

	headerRow := e.FindHeaderRow(sheet.Grid)
	if headerRow < 0 {
		log.Info("No header row found, sheet yields an empty table")
		return models.NewTable(), -1
	}

	width := 0
	for _, row := range sheet.Grid {
		if len(row) > width {
			width = len(row)
		}
	}

	columns := make([]string, width)
	header := sheet.Grid[headerRow]
	for i := range columns {
		if i >= len(header) || header[i].IsEmpty() {
			columns[i] = fmt.Sprintf("Unnamed: %d", i)
			continue
		}
		columns[i] = TitleCase(header[i].String())
	}

	table := models.NewTable(columns...)
	for _, row := range sheet.Grid[headerRow+1:] {
		table.AppendRow(row)
	}

	e.NormalizeDebitColumn(table)

	total := table.Len()
	if table.HasColumn(e.config.DebitColumn) {
		table = table.Filter(func(r models.Record) bool {
			cell, _ := r.Get(e.config.DebitColumn)
			return !cell.IsEmpty()
		})
	}

	log.WithFields(logger.Fields{
		"header_row": headerRow,
		"columns":    len(columns),
		"rows":       table.Len(),
		"dropped":    total - table.Len(),
	}).Debug("Extracted table")

	return table, headerRow
}

// FindHeaderRow returns the index of the first row whose leading cells contain
// a header label, or -1
func (e *TableExtractor) FindHeaderRow(grid models.Grid) int {
	for i, row := range grid {
		limit := e.config.HeaderScanWidth
		if limit > len(row) {
			limit = len(row)
		}
		for _, cell := range row[:limit] {
			if cell.IsEmpty() {
				continue
			}
			if e.config.IsHeaderLabel(strings.ToLower(cell.String())) {
				return i
			}
		}
	}
	return -1
}

// NormalizeDebitColumn renames the first debit alias to the canonical debit
// column. A table that already has the canonical column is left untouched, so
// applying it twice changes nothing.
func (e *TableExtractor) NormalizeDebitColumn(table *models.Table) bool {
	if table.HasColumn(e.config.DebitColumn) {
		return false
	}
	for _, alias := range e.config.DebitAliases {
		if table.RenameColumn(alias, e.config.DebitColumn) {
			e.logger.WithFields(logger.Fields{
				"from": alias,
				"to":   e.config.DebitColumn,
			}).Debug("Renamed debit column")
			return true
		}
	}
	return false
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest. A word starts at any letter that does not follow another letter.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
