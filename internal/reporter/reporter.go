// Package reporter renders reconciliation results.
//
// A result is first flattened into a Report by Assemble: every record with a
// trailing status column, ordered status counts and source metadata. The
// report is then written in one of the supported formats.
//
// Supported output formats:
//   - xlsx: a "Match Status" sheet with status cells colored by outcome and
//     a "Summary" sheet (the default)
//   - console: a human-readable summary and a preview of the first rows
//   - json: the full report for programmatic consumption
//   - csv: the flat export for spreadsheet applications
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	err = generator.GenerateReport(result, file)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"bank-reconciliation-service/internal/reconciler"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatXLSX    OutputFormat = "xlsx"
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatXLSX, FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// Binary reports whether the format must not be written to a terminal
func (f OutputFormat) Binary() bool {
	return f == FormatXLSX
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`

	// FileName overrides the {PREFIX}_Match_Status.xlsx default
	FileName string `json:"file_name" yaml:"file_name" mapstructure:"file_name"`

	// PreviewRows limits the console record preview
	PreviewRows int `json:"preview_rows" yaml:"preview_rows" mapstructure:"preview_rows"`

	// IncludeSummarySheet adds the Summary sheet to xlsx output
	IncludeSummarySheet bool `json:"include_summary_sheet" yaml:"include_summary_sheet" mapstructure:"include_summary_sheet"`

	CSVDelimiter rune `json:"csv_delimiter" yaml:"csv_delimiter" mapstructure:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers" yaml:"csv_headers" mapstructure:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:              FormatXLSX,
		PreviewRows:         10,
		IncludeSummarySheet: true,
		CSVDelimiter:        ',',
		CSVHeaders:          true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.PreviewRows < 0 {
		return fmt.Errorf("preview rows cannot be negative, got %d", c.PreviewRows)
	}

	if c.FileName != "" && strings.ContainsAny(c.FileName, `/\`) {
		return fmt.Errorf("file name must not contain a path: %s", c.FileName)
	}

	return nil
}

// ReportGenerator generates reconciliation reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport assembles a report from reconciliation results and writes it to the provided writer
func (rg *ReportGenerator) GenerateReport(result *reconciler.ReconciliationResult, writer io.Writer) error {
	if result == nil || result.Match == nil {
		return fmt.Errorf("reconciliation result cannot be nil")
	}

	return rg.WriteReport(Assemble(result, rg.config), writer)
}

// WriteReport writes an assembled report in the configured format
func (rg *ReportGenerator) WriteReport(report *Report, writer io.Writer) error {
	switch rg.config.Format {
	case FormatXLSX:
		return rg.generateXLSXReport(report, writer)
	case FormatConsole:
		return rg.generateConsoleReport(report, writer)
	case FormatJSON:
		return rg.generateJSONReport(report, writer)
	case FormatCSV:
		return rg.generateCSVReport(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// WriteSummary prints the status counts only. The CLI uses it after every run.
func (rg *ReportGenerator) WriteSummary(report *Report, writer io.Writer) {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	for _, c := range report.Counts {
		fmt.Fprintf(tw, "%s:\t%d\n", c.Label, c.Count)
	}
	fmt.Fprintf(tw, "Total:\t%d\n", report.Total)
	tw.Flush()
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(report *Report, writer io.Writer) error {
	fmt.Fprintf(writer, "RECONCILIATION REPORT\n")
	fmt.Fprintf(writer, "Run ID: %s\n", report.RunID)
	fmt.Fprintf(writer, "Generated: %s\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Account Type: %s\n", report.AccountType)
	fmt.Fprintf(writer, "Fuzzy Threshold: %d%% (not applied, matching is exact)\n\n", report.FuzzyThreshold)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.WriteSummary(report, writer)
	fmt.Fprintf(writer, "Match Rate: %.1f%%\n\n", report.MatchRate)

	fmt.Fprintf(writer, "=== SOURCES ===\n")
	rg.printSources(report, writer)
	fmt.Fprintf(writer, "\n")

	limit := rg.config.PreviewRows
	if limit == 0 || limit > len(report.Rows) {
		limit = len(report.Rows)
	}
	fmt.Fprintf(writer, "=== PREVIEW (%d of %d rows) ===\n", limit, len(report.Rows))

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(report.Columns, "\t"))
	for _, row := range report.Rows[:limit] {
		fmt.Fprintln(tw, strings.Join(row.Values(), "\t"))
	}
	return tw.Flush()
}

func (rg *ReportGenerator) printSources(report *Report, writer io.Writer) {
	for _, source := range report.Sources {
		fmt.Fprintf(writer, "%-7s %s, %d rows", source.Role, source.Name, source.Rows)
		if source.Sheet != "" {
			fmt.Fprintf(writer, ", sheet %s", source.Sheet)
		}
		fmt.Fprintf(writer, "\n")
		for _, sheet := range source.Sheets {
			if sheet.HeaderRow < 0 {
				fmt.Fprintf(writer, "        - %s: no header row, skipped\n", sheet.Name)
				continue
			}
			fmt.Fprintf(writer, "        - %s: header at row %d, %d rows\n", sheet.Name, sheet.HeaderRow+1, sheet.Rows)
		}
	}
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(report *Report, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(report)
}

// generateCSVReport writes the flat export, one line per record
func (rg *ReportGenerator) generateCSVReport(report *Report, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	if rg.config.CSVDelimiter != 0 {
		csvWriter.Comma = rg.config.CSVDelimiter
	}

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(report.Columns); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for i, row := range report.Rows {
		if err := csvWriter.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write CSV record %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
