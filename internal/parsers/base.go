// Package parsers turns bank statement and ledger exports into tables.
//
// Bank statements arrive as spreadsheets with free-form preamble rows (bank
// name, account number, statement period) above the real header. Ledger
// exports are plain tables whose first row is the header.
//
// Supported containers:
//   - .xlsx / .xlsm via excelize
//   - legacy .xls via extrame/xls
//   - .csv, treated as a workbook with a single sheet
//
// Loaders:
//   - TableExtractor: finds the header row of one sheet and normalises columns
//   - MultiSheetLoader: runs the extractor over one or all sheets of a bank file
//   - LedgerLoader: reads the first sheet of a ledger file and coerces amounts
//
// Example usage:
//
//	bank, err := parsers.OpenSourceFile("statement.xlsx")
//	loader := parsers.NewMultiSheetLoader(parsers.DefaultBankConfig())
//	dataset, err := loader.Load(ctx, bank, "")
package parsers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// ParseConfig holds configuration for CSV parsing
type ParseConfig struct {
	Delimiter        rune
	Comment          rune
	TrimLeadingSpace bool
	ValidateEncoding bool
	EncodingSample   int
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ',',
		TrimLeadingSpace: false,
		ValidateEncoding: true,
		EncodingSample:   100,
	}
}

// csvWorkbook is a CSV file exposed as a one-sheet workbook named after the file
type csvWorkbook struct {
	source *SourceFile
	name   string
	grid   models.Grid
}

func openCSV(source *SourceFile, config *ParseConfig) (*csvWorkbook, error) {
	if config == nil {
		config = DefaultParseConfig()
	}

	log := logger.GetGlobalLogger().WithComponent("csv_reader").WithField("file", source.DisplayName())

	if config.ValidateEncoding {
		if err := validateEncoding(source, config.EncodingSample); err != nil {
			log.WithError(err).Error("File encoding validation failed")
			return nil, err
		}
	}

	reader := csv.NewReader(bytes.NewReader(source.Data))
	reader.Comma = config.Delimiter
	reader.Comment = config.Comment
	reader.TrimLeadingSpace = config.TrimLeadingSpace
	reader.FieldsPerRecord = -1 // Variable number of fields
	reader.LazyQuotes = true

	var grid models.Grid
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.WithError(err).WithField("line_number", line).Warn("Failed to read CSV record")
			return nil, errors.ParseError(errors.CodeInvalidFormat, source.DisplayName(), line, err)
		}

		row := make([]models.Cell, len(record))
		for i, field := range record {
			row[i] = inferCell(field)
		}
		grid = append(grid, row)
	}

	log.WithField("rows", len(grid)).Debug("Read CSV file")

	name := strings.TrimSuffix(filepath.Base(source.Name), filepath.Ext(source.Name))
	if name == "" || name == "." {
		name = "Sheet1"
	}

	return &csvWorkbook{source: source, name: name, grid: grid}, nil
}

func (w *csvWorkbook) SheetNames() []string {
	return []string{w.name}
}

func (w *csvWorkbook) Sheet(name string) (*models.Sheet, error) {
	if name != w.name {
		return nil, sheetNotFound(w.source, name, w.SheetNames())
	}
	return &models.Sheet{Name: w.name, Grid: w.grid}, nil
}

// validateEncoding checks if the file contains valid UTF-8 text
func validateEncoding(source *SourceFile, sample int) error {
	scanner := bufio.NewScanner(bytes.NewReader(source.Data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() && (sample <= 0 || lineNum < sample) {
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(
				errors.CodeEncodingError,
				source.DisplayName(),
				lineNum,
				fmt.Errorf("invalid UTF-8 encoding detected"),
			)
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, source.DisplayName(), err)
	}

	return nil
}

// inferCell types a textual field: blank is empty, numeric text is a number
func inferCell(field string) models.Cell {
	if field == "" {
		return models.EmptyCell()
	}
	if d, ok := models.ParseNumber(field); ok {
		return models.NumberCell(d)
	}
	return models.TextCell(field)
}
