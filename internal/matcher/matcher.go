package matcher

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// MatchingEngine classifies ledger records against bank rows
type MatchingEngine struct {
	Config *MatchingConfig
	logger logger.Logger
}

// Result is the outcome of one reconciliation. Records holds every ledger
// record in its original order followed by one synthetic record per bank-only
// amount, in the order those amounts first appear in the bank table.
type Result struct {
	// Columns are the ledger columns; every record is exactly this wide
	Columns []string

	// AmountColumn is the ledger amount column used for matching
	AmountColumn string

	Records []models.ClassifiedRecord
	Counts  models.StatusCounts

	// BankOnlyAmounts are the distinct bank amounts absent from the ledger
	BankOnlyAmounts []decimal.Decimal

	BankRows       int
	BankNulls      int
	LedgerRows     int
	LedgerNulls    int
	FuzzyThreshold int
	Duration       time.Duration
}

// NewMatchingEngine creates a new matching engine with the specified configuration
func NewMatchingEngine(config *MatchingConfig) *MatchingEngine {
	if config == nil {
		config = DefaultMatchingConfig()
	}

	return &MatchingEngine{
		Config: config,
		logger: logger.GetGlobalLogger().WithComponent("matching_engine"),
	}
}

// Reconcile classifies every ledger record and appends bank-only amounts.
// Amounts are compared for exact decimal equality after coercion; cells that
// are not numbers are treated as missing. Neither input table is modified.
func (me *MatchingEngine) Reconcile(bank, ledger *models.Table, amountColumn string) (*Result, error) {
	if err := me.Config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "matching", me.Config.String(), err)
	}
	if bank == nil || ledger == nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "reconciliation", fmt.Errorf("bank and ledger tables are required"))
	}

	start := time.Now()

	if !bank.HasColumn(me.Config.BankAmountColumn) {
		return nil, errors.MissingColumnError(me.Config.BankAmountColumn, "bank statement", bank.Columns)
	}
	amountIdx := ledger.ColumnIndex(amountColumn)
	if amountIdx < 0 {
		return nil, errors.MissingColumnError(amountColumn, "ledger", ledger.Columns)
	}

	bankIndex := NewAmountIndexFromCells(bank.Column(me.Config.BankAmountColumn))
	ledgerIndex := NewAmountIndex()

	result := &Result{
		Columns:        append([]string(nil), ledger.Columns...),
		AmountColumn:   amountColumn,
		Records:        make([]models.ClassifiedRecord, 0, ledger.Len()),
		Counts:         make(models.StatusCounts),
		BankRows:       bank.Len(),
		BankNulls:      bankIndex.Nulls(),
		LedgerRows:     ledger.Len(),
		FuzzyThreshold: me.Config.FuzzyThreshold,
	}

	for _, row := range ledger.Rows {
		status := models.StatusNotFoundInBank
		if amount, ok := models.CoerceAmount(row[amountIdx]); ok {
			ledgerIndex.Add(amount)
			switch count := bankIndex.Count(amount); {
			case count == 1:
				status = models.StatusMatched
			case count >= 2:
				status = models.StatusMultipleMatches
			}
		} else {
			result.LedgerNulls++
		}

		result.Records = append(result.Records, models.ClassifiedRecord{
			Cells:  append([]models.Cell(nil), row...),
			Status: status,
		})
		result.Counts[status]++
	}

	result.BankOnlyAmounts = bankIndex.Difference(ledgerIndex)
	for _, amount := range result.BankOnlyAmounts {
		cells := make([]models.Cell, len(result.Columns))
		cells[amountIdx] = models.NumberCell(amount)
		result.Records = append(result.Records, models.ClassifiedRecord{
			Cells:     cells,
			Status:    models.StatusNotFoundInLedger,
			Synthetic: true,
		})
		result.Counts[models.StatusNotFoundInLedger]++
	}

	result.Duration = time.Since(start)

	me.logger.WithFields(logger.Fields{
		"bank_rows":           result.BankRows,
		"ledger_rows":         result.LedgerRows,
		"matched":             result.Counts[models.StatusMatched],
		"multiple_matches":    result.Counts[models.StatusMultipleMatches],
		"not_found_in_bank":   result.Counts[models.StatusNotFoundInBank],
		"not_found_in_ledger": result.Counts[models.StatusNotFoundInLedger],
		"duration":            result.Duration,
	}).Info("Reconciliation completed")

	return result, nil
}

// Record returns the i-th classified record as a table record
func (r *Result) Record(i int) models.Record {
	table := models.Table{Columns: r.Columns, Rows: [][]models.Cell{r.Records[i].Cells}}
	return table.Record(0)
}

// Amount returns the coerced amount of the i-th record
func (r *Result) Amount(i int) (decimal.Decimal, bool) {
	cell, ok := r.Record(i).Get(r.AmountColumn)
	if !ok {
		return decimal.Decimal{}, false
	}
	return models.CoerceAmount(cell)
}

// WithStatus returns the indexes of records carrying the given status
func (r *Result) WithStatus(status models.Status) []int {
	var out []int
	for i, record := range r.Records {
		if record.Status == status {
			out = append(out, i)
		}
	}
	return out
}

// MatchRate is the share of ledger records matched to exactly one bank row
func (r *Result) MatchRate() float64 {
	if r.LedgerRows == 0 {
		return 0
	}
	return float64(r.Counts[models.StatusMatched]) / float64(r.LedgerRows) * 100
}
