package parsers

import (
	"context"
	"fmt"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// LedgerDataset is a ledger table whose amount column holds numbers or empty cells only
type LedgerDataset struct {
	Source       string
	Sheet        string
	AmountColumn string
	Table        *models.Table
	// Coerced counts amount cells that were present but not numeric
	Coerced int
}

// LedgerLoader reads SAP ledger exports
type LedgerLoader struct {
	config *LedgerConfig
	logger logger.Logger
}

// NewLedgerLoader creates a loader. A nil config uses DefaultLedgerConfig.
func NewLedgerLoader(config *LedgerConfig) *LedgerLoader {
	if config == nil {
		config = DefaultLedgerConfig()
	}
	return &LedgerLoader{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("ledger_loader"),
	}
}

// Load reads the first sheet of the ledger file, uses its first non-blank row
// as the header and coerces the account type's amount column to numbers.
// Values that cannot be read as numbers become empty.
func (l *LedgerLoader) Load(ctx context.Context, source *SourceFile, accountType models.AccountType) (*LedgerDataset, error) {
	if source.IsMissing() {
		return nil, errors.NoFileProvidedError("ledger")
	}

	amountColumn := accountType.AmountColumn()
	if l.config.AmountColumn != "" {
		amountColumn = l.config.AmountColumn
	}

	log := l.logger.WithFields(logger.Fields{
		"file":          source.DisplayName(),
		"account_type":  accountType,
		"amount_column": amountColumn,
	})

	workbook, err := OpenWorkbook(source)
	if err != nil {
		log.WithError(err).Error("Failed to open ledger workbook")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "ledger loading", err)
	}

	dataset := &LedgerDataset{Source: source.DisplayName(), AmountColumn: amountColumn, Table: models.NewTable()}

	names := workbook.SheetNames()
	if len(names) > 0 {
		sheet, err := workbook.Sheet(names[0])
		if err != nil {
			return nil, err
		}
		dataset.Sheet = sheet.Name
		dataset.Table = l.buildTable(sheet.Grid)
	}

	idx := dataset.Table.ColumnIndex(amountColumn)
	if idx < 0 {
		log.WithField("available_columns", dataset.Table.Columns).Error("Ledger amount column is missing")
		return nil, errors.MissingColumnError(amountColumn, source.DisplayName(), dataset.Table.Columns)
	}

	for _, row := range dataset.Table.Rows {
		amount, ok := models.CoerceAmount(row[idx])
		if !ok {
			if !row[idx].IsEmpty() {
				dataset.Coerced++
			}
			row[idx] = models.EmptyCell()
			continue
		}
		row[idx] = models.NumberCell(amount)
	}

	if dataset.Coerced > 0 {
		log.WithField("count", dataset.Coerced).Warn("Non-numeric ledger amounts treated as missing")
	}
	log.WithField("rows", dataset.Table.Len()).Info("Loaded ledger")

	return dataset, nil
}

func (l *LedgerLoader) buildTable(grid models.Grid) *models.Table {
	headerRow := -1
	for i, row := range grid {
		if !isBlankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return models.NewTable()
	}

	width := 0
	for _, row := range grid[headerRow:] {
		if len(row) > width {
			width = len(row)
		}
	}

	header := grid[headerRow]
	raw := make([]string, width)
	for i := range raw {
		if i >= len(header) || header[i].IsEmpty() {
			raw[i] = fmt.Sprintf("Unnamed: %d", i)
			continue
		}
		raw[i] = header[i].String()
	}

	table := models.NewTable(DedupeColumns(raw)...)
	for _, row := range grid[headerRow+1:] {
		if l.config.SkipBlankRows && isBlankRow(row) {
			continue
		}
		table.AppendRow(row)
	}
	return table
}

// DedupeColumns suffixes repeated names with .1, .2 and so on, skipping
// suffixes that are already taken
func DedupeColumns(columns []string) []string {
	out := make([]string, len(columns))
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}

	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		n := seen[c]
		seen[c]++
		if n == 0 {
			out[i] = c
			continue
		}
		candidate := fmt.Sprintf("%s.%d", c, n)
		for taken[candidate] {
			n++
			candidate = fmt.Sprintf("%s.%d", c, n)
		}
		seen[c] = n + 1
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

func isBlankRow(row []models.Cell) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}
