package reporter

import (
	"time"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/reconciler"
)

// StatusColumn is the column appended to every exported record
const StatusColumn = "status"

// StatusCount is one line of the summary
type StatusCount struct {
	Status models.Status `json:"status" yaml:"status"`
	Label  string        `json:"label" yaml:"label"`
	Count  int           `json:"count" yaml:"count"`
	Color  string        `json:"color" yaml:"-"`
}

// Row is one exported record. Cells line up with Report.Columns minus the
// trailing status column.
type Row struct {
	Cells     []models.Cell `json:"cells"`
	Status    models.Status `json:"status"`
	Synthetic bool          `json:"synthetic,omitempty"`
}

// Values returns the row as display strings, status last
func (r Row) Values() []string {
	out := make([]string, 0, len(r.Cells)+1)
	for _, cell := range r.Cells {
		out = append(out, cell.String())
	}
	return append(out, string(r.Status))
}

// Report is the presentation-ready form of a reconciliation result
type Report struct {
	RunID          string                  `json:"run_id"`
	GeneratedAt    time.Time               `json:"generated_at"`
	AccountType    models.AccountType      `json:"account_type"`
	FileName       string                  `json:"file_name"`
	FuzzyThreshold int                     `json:"fuzzy_threshold"`
	AmountColumn   string                  `json:"amount_column"`
	Columns        []string                `json:"columns"`
	Rows           []Row                   `json:"rows"`
	Counts         []StatusCount           `json:"counts"`
	Total          int                     `json:"total"`
	MatchRate      float64                 `json:"match_rate"`
	Sources        []reconciler.SourceInfo `json:"sources"`
	Duration       time.Duration           `json:"duration"`
}

// Assemble flattens a reconciliation result into a report. Counts are listed
// in status order and include statuses with no records.
func Assemble(result *reconciler.ReconciliationResult, config *ReportConfig) *Report {
	if config == nil {
		config = DefaultReportConfig()
	}
	match := result.Match

	// a ledger column named status is replaced by the reconciliation status
	columns := append([]string(nil), match.Columns...)
	replaced := -1
	for i, column := range columns {
		if column == StatusColumn && column != match.AmountColumn {
			replaced = i
			columns = append(columns[:i], columns[i+1:]...)
			break
		}
	}

	report := &Report{
		RunID:          result.RunID.String(),
		GeneratedAt:    result.ProcessedAt,
		AccountType:    result.AccountType,
		FileName:       config.FileName,
		FuzzyThreshold: match.FuzzyThreshold,
		AmountColumn:   match.AmountColumn,
		Columns:        append(columns, StatusColumn),
		Rows:           make([]Row, len(match.Records)),
		Total:          len(match.Records),
		MatchRate:      match.MatchRate(),
		Sources:        result.Sources,
		Duration:       result.Duration,
	}
	if report.FileName == "" {
		report.FileName = result.AccountType.ReportFileName()
	}

	for i, record := range match.Records {
		cells := record.Cells
		if replaced >= 0 && replaced < len(cells) {
			cells = append(append([]models.Cell(nil), cells[:replaced]...), cells[replaced+1:]...)
		}
		report.Rows[i] = Row{Cells: cells, Status: record.Status, Synthetic: record.Synthetic}
	}

	for _, status := range models.AllStatuses() {
		report.Counts = append(report.Counts, StatusCount{
			Status: status,
			Label:  status.Label(),
			Count:  match.Counts[status],
			Color:  status.Color(),
		})
	}

	return report
}

// Count returns the number of records carrying the status
func (r *Report) Count(status models.Status) int {
	for _, c := range r.Counts {
		if c.Status == status {
			return c.Count
		}
	}
	return 0
}
