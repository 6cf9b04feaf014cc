package parsers

import (
	"fmt"
	"strings"
)

// BankConfig controls how bank statement sheets are turned into tables
type BankConfig struct {
	// HeaderLabels are the lower-case cell values that identify the header row
	HeaderLabels []string `json:"header_labels" yaml:"header_labels" mapstructure:"header_labels"`
	// HeaderScanWidth is how many leading cells of each row are inspected for a label
	HeaderScanWidth int `json:"header_scan_width" yaml:"header_scan_width" mapstructure:"header_scan_width"`
	// DebitColumn is the canonical name of the debit amount column
	DebitColumn string `json:"debit_column" yaml:"debit_column" mapstructure:"debit_column"`
	// DebitAliases are renamed to DebitColumn, first present alias wins
	DebitAliases []string `json:"debit_aliases" yaml:"debit_aliases" mapstructure:"debit_aliases"`
}

// DefaultBankConfig returns the header labels and debit aliases seen in
// Indian bank statement exports
func DefaultBankConfig() *BankConfig {
	return &BankConfig{
		HeaderLabels:    []string{"date", "txn date", "transaction date"},
		HeaderScanWidth: 4,
		DebitColumn:     "Withdrawals",
		DebitAliases:    []string{"Withdrawal", "Withdrawals", "Debit", "Dr Amount"},
	}
}

// Validate checks if the bank configuration is valid
func (bc *BankConfig) Validate() error {
	if len(bc.HeaderLabels) == 0 {
		return fmt.Errorf("at least one header label is required")
	}
	for _, label := range bc.HeaderLabels {
		if label != strings.ToLower(label) {
			return fmt.Errorf("header label %q must be lower-case", label)
		}
	}

	if bc.HeaderScanWidth <= 0 {
		return fmt.Errorf("header scan width must be positive")
	}

	if strings.TrimSpace(bc.DebitColumn) == "" {
		return fmt.Errorf("debit column cannot be empty")
	}

	return nil
}

// IsHeaderLabel reports whether a lower-cased cell value marks the header row
func (bc *BankConfig) IsHeaderLabel(value string) bool {
	for _, label := range bc.HeaderLabels {
		if value == label {
			return true
		}
	}
	return false
}

// LedgerConfig controls how ledger exports are read
type LedgerConfig struct {
	// AmountColumn overrides the account type's amount column when set
	AmountColumn string `json:"amount_column,omitempty" yaml:"amount_column,omitempty" mapstructure:"amount_column"`
	// SkipBlankRows drops rows where every cell is empty
	SkipBlankRows bool `json:"skip_blank_rows" yaml:"skip_blank_rows" mapstructure:"skip_blank_rows"`
}

// DefaultLedgerConfig returns a configuration with sensible defaults
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		SkipBlankRows: true,
	}
}

// Validate checks if the ledger configuration is valid
func (lc *LedgerConfig) Validate() error {
	if lc.AmountColumn != "" && strings.TrimSpace(lc.AmountColumn) == "" {
		return fmt.Errorf("amount column override cannot be blank")
	}
	return nil
}
