// Package reconciler runs a complete reconciliation: it loads the bank
// statement and the ledger export, classifies ledger records and returns a
// result that reporters can render.
//
// A run is all-or-nothing. Any loader error aborts it and no partial result
// is returned.
//
// Example usage:
//
//	service, err := reconciler.NewReconciliationService(reconciler.DefaultConfig(), nil, nil)
//	result, err := service.ProcessReconciliation(ctx, &reconciler.ReconciliationRequest{
//		BankFile:    bank,
//		LedgerFile:  ledger,
//		AccountType: models.AccountTypeBRS,
//	})
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bank-reconciliation-service/internal/matcher"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/parsers"
	"bank-reconciliation-service/pkg/errors"
	"bank-reconciliation-service/pkg/logger"
)

// BankLoader loads a bank statement workbook into a single table
//
//go:generate mockgen -destination=mocks/mock_loaders.go -package=mock_reconciler -source=reconciliation.go
type BankLoader interface {
	Load(ctx context.Context, source *parsers.SourceFile, sheetName string) (*parsers.BankDataset, error)
}

// LedgerLoader loads a ledger export and coerces its amount column
type LedgerLoader interface {
	Load(ctx context.Context, source *parsers.SourceFile, accountType models.AccountType) (*parsers.LedgerDataset, error)
}

// Config holds configuration options for the reconciliation service
type Config struct {
	Bank     *parsers.BankConfig     `json:"bank" yaml:"bank" mapstructure:"bank"`
	Ledger   *parsers.LedgerConfig   `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
	Matching *matcher.MatchingConfig `json:"matching" yaml:"matching" mapstructure:"matching"`
}

// DefaultConfig returns a default configuration for the reconciliation service
func DefaultConfig() *Config {
	return &Config{
		Bank:     parsers.DefaultBankConfig(),
		Ledger:   parsers.DefaultLedgerConfig(),
		Matching: matcher.DefaultMatchingConfig(),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Bank == nil || c.Ledger == nil || c.Matching == nil {
		return fmt.Errorf("bank, ledger and matching configuration are required")
	}
	if err := c.Bank.Validate(); err != nil {
		return fmt.Errorf("bank configuration: %w", err)
	}
	if err := c.Ledger.Validate(); err != nil {
		return fmt.Errorf("ledger configuration: %w", err)
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching configuration: %w", err)
	}
	if c.Matching.BankAmountColumn != c.Bank.DebitColumn {
		return fmt.Errorf("matching bank amount column %q must equal bank debit column %q",
			c.Matching.BankAmountColumn, c.Bank.DebitColumn)
	}
	return nil
}

// ReconciliationRequest represents a request for reconciliation
type ReconciliationRequest struct {
	BankFile   *parsers.SourceFile
	LedgerFile *parsers.SourceFile

	// BankSheet restricts the bank load to one sheet; empty means all sheets
	BankSheet string

	AccountType models.AccountType
}

// Validate checks that both files are present and the account type is known
func (r *ReconciliationRequest) Validate() error {
	if r.BankFile.IsMissing() {
		return errors.NoFileProvidedError("bank")
	}
	if r.LedgerFile.IsMissing() {
		return errors.NoFileProvidedError("ledger")
	}
	if r.AccountType != models.AccountTypeBRS && r.AccountType != models.AccountTypeGL {
		return errors.ValidationError(errors.CodeInvalidAccountType, "account_type", r.AccountType, nil)
	}
	return nil
}

// SourceInfo describes one input of a run
type SourceInfo struct {
	Role   string              `json:"role" yaml:"role"`
	Name   string              `json:"name" yaml:"name"`
	Path   string              `json:"path,omitempty" yaml:"path,omitempty"`
	Sheet  string              `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Rows   int                 `json:"rows" yaml:"rows"`
	Sheets []parsers.SheetStat `json:"sheets,omitempty" yaml:"sheets,omitempty"`
}

// ReconciliationResult contains the complete results of reconciliation
type ReconciliationResult struct {
	RunID       uuid.UUID
	AccountType models.AccountType
	Match       *matcher.Result
	Sources     []SourceInfo
	ProcessedAt time.Time
	Duration    time.Duration
}

// ReconciliationService orchestrates the complete reconciliation process
type ReconciliationService struct {
	bankLoader   BankLoader
	ledgerLoader LedgerLoader
	engine       *matcher.MatchingEngine
	config       *Config
	logger       logger.Logger
	progress     []ProgressCallback
}

// NewReconciliationService creates a new reconciliation service. Nil loaders
// are replaced by the spreadsheet loaders built from config.
func NewReconciliationService(config *Config, bankLoader BankLoader, ledgerLoader LedgerLoader) (*ReconciliationService, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "reconciliation", err.Error(), err)
	}

	if bankLoader == nil {
		bankLoader = parsers.NewMultiSheetLoader(config.Bank)
	}
	if ledgerLoader == nil {
		ledgerLoader = parsers.NewLedgerLoader(config.Ledger)
	}

	return &ReconciliationService{
		bankLoader:   bankLoader,
		ledgerLoader: ledgerLoader,
		engine:       matcher.NewMatchingEngine(config.Matching),
		config:       config,
		logger:       logger.GetGlobalLogger().WithComponent("reconciliation_service"),
	}, nil
}

// AddProgressCallback registers a callback notified after every step of a run
func (rs *ReconciliationService) AddProgressCallback(callback ProgressCallback) {
	rs.progress = append(rs.progress, callback)
}

// GetConfiguration returns the current configuration
func (rs *ReconciliationService) GetConfiguration() *Config {
	return rs.config
}

// ProcessReconciliation validates the request, loads both files and
// classifies the ledger against the bank statement
func (rs *ReconciliationService) ProcessReconciliation(
	ctx context.Context,
	request *ReconciliationRequest,
) (*ReconciliationResult, error) {

	if request == nil {
		return nil, errors.NoFileProvidedError("bank")
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	op := logger.NewOperationLogger("reconciliation", rs.logger).WithFields(logger.Fields{
		"run_id":       runID.String(),
		"account_type": request.AccountType,
	})
	tracker := newProgressTracker(rs.progress, runID)

	tracker.step(StepLoadBank)
	op.Step(string(StepLoadBank))
	bank, err := rs.bankLoader.Load(ctx, request.BankFile, request.BankSheet)
	if err != nil {
		op.Error(err, "Failed to load bank statement")
		return nil, err
	}

	tracker.step(StepLoadLedger)
	op.Step(string(StepLoadLedger))
	ledger, err := rs.ledgerLoader.Load(ctx, request.LedgerFile, request.AccountType)
	if err != nil {
		op.Error(err, "Failed to load ledger")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		op.Error(err, "Reconciliation cancelled")
		return nil, errors.InternalError(errors.CodeUnexpectedError, "reconciliation", err)
	}

	tracker.step(StepMatch)
	op.Step(string(StepMatch))
	match, err := rs.engine.Reconcile(bank.Table, ledger.Table, ledger.AmountColumn)
	if err != nil {
		op.Error(err, "Matching failed")
		return nil, errors.WrapIfNeeded(err, errors.CategoryReconciliation, errors.CodeProcessingError, "matching failed")
	}

	result := &ReconciliationResult{
		RunID:       runID,
		AccountType: request.AccountType,
		Match:       match,
		Sources: []SourceInfo{
			{
				Role:   "bank",
				Name:   request.BankFile.Name,
				Path:   request.BankFile.Path,
				Sheet:  request.BankSheet,
				Rows:   bank.Table.Len(),
				Sheets: bank.Sheets,
			},
			{
				Role:  "ledger",
				Name:  request.LedgerFile.Name,
				Path:  request.LedgerFile.Path,
				Sheet: ledger.Sheet,
				Rows:  ledger.Table.Len(),
			},
		},
		ProcessedAt: tracker.start,
		Duration:    time.Since(tracker.start),
	}

	tracker.done(match)
	op.WithFields(logger.Fields{
		"records":    len(match.Records),
		"match_rate": fmt.Sprintf("%.1f%%", match.MatchRate()),
	}).Success("Reconciliation completed")

	return result, nil
}
