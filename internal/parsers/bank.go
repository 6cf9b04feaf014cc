package parsers

import (
	"context"
	"time"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// SheetStat describes what one sheet contributed to a bank dataset
type SheetStat struct {
	Name      string `json:"name" yaml:"name"`
	HeaderRow int    `json:"header_row" yaml:"header_row"`
	Rows      int    `json:"rows" yaml:"rows"`
}

// BankDataset is the concatenated bank table plus per-sheet provenance
type BankDataset struct {
	Source string
	Table  *models.Table
	Sheets []SheetStat
}

// MultiSheetLoader loads a bank statement workbook, one sheet or all of them
type MultiSheetLoader struct {
	config    *BankConfig
	extractor *TableExtractor
	logger    logger.Logger
}

// NewMultiSheetLoader creates a loader. A nil config uses DefaultBankConfig.
func NewMultiSheetLoader(config *BankConfig) *MultiSheetLoader {
	if config == nil {
		config = DefaultBankConfig()
	}
	return &MultiSheetLoader{
		config:    config,
		extractor: NewTableExtractor(config),
		logger:    logger.GetGlobalLogger().WithComponent("bank_loader"),
	}
}

// Load extracts the named sheet, or every sheet in file order when sheetName
// is empty. Sheets without a header row are skipped. Every non-empty sheet
// table must carry the debit column.
func (l *MultiSheetLoader) Load(ctx context.Context, source *SourceFile, sheetName string) (*BankDataset, error) {
	if source.IsMissing() {
		return nil, errors.NoFileProvidedError("bank")
	}

	start := time.Now()
	log := l.logger.WithField("file", source.DisplayName())

	workbook, err := OpenWorkbook(source)
	if err != nil {
		log.WithError(err).Error("Failed to open bank workbook")
		return nil, err
	}

	names := workbook.SheetNames()
	if sheetName != "" {
		names = []string{sheetName}
	}

	dataset := &BankDataset{Source: source.DisplayName()}
	var tables []*models.Table

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, errors.InternalError(errors.CodeUnexpectedError, "bank loading", err)
		}

		sheet, err := workbook.Sheet(name)
		if err != nil {
			log.WithError(err).WithField("sheet", name).Error("Failed to read sheet")
			return nil, err
		}

		table, headerRow := l.extractor.Extract(sheet)
		dataset.Sheets = append(dataset.Sheets, SheetStat{Name: name, HeaderRow: headerRow, Rows: table.Len()})

		if table.IsEmpty() {
			log.WithField("sheet", name).Debug("Discarding empty sheet result")
			continue
		}

		if !table.HasColumn(l.config.DebitColumn) {
			return nil, errors.MissingColumnError(l.config.DebitColumn, source.DisplayName(), table.Columns).
				WithContext("sheet", name)
		}

		tables = append(tables, table)
	}

	combined := models.Concat(tables...)
	if !combined.HasColumn(l.config.DebitColumn) {
		combined.Columns = append(combined.Columns, l.config.DebitColumn)
	}
	dataset.Table = combined

	log.WithFields(logger.Fields{
		"sheets":      len(names),
		"used_sheets": len(tables),
		"rows":        combined.Len(),
		"duration":    time.Since(start),
	}).Info("Loaded bank statement")

	return dataset, nil
}
