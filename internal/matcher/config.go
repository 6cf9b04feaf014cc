// Package matcher classifies ledger records against a bank statement by
// exact amount equality.
//
// The engine answers one question per ledger amount: how many bank rows carry
// the same amount? It then lists bank amounts that the ledger never mentions.
//
// The classification is:
//   - MATCHED: exactly one bank row has the ledger record's amount
//   - MULTIPLE_MATCHES: two or more bank rows have it
//   - NOT_FOUND_IN_BANK: no bank row has it, or the ledger amount is missing
//   - NOT_FOUND_IN_LEDGER: a synthetic record for each distinct bank amount
//     that no ledger record carries
//
// Ledger records are classified row by row, while bank-only amounts are
// reported once per distinct value. A bank amount appearing three times but
// absent from the ledger yields a single NOT_FOUND_IN_LEDGER record.
//
// Example usage:
//
//	config := matcher.DefaultMatchingConfig()
//	engine := matcher.NewMatchingEngine(config)
//	result, err := engine.Reconcile(bankTable, ledgerTable, "Amount in LC")
package matcher

import (
	"fmt"
)

const (
	// DefaultFuzzyThreshold is the similarity threshold shown to users by default
	DefaultFuzzyThreshold = 60
	// MinFuzzyThreshold is the lowest accepted similarity threshold
	MinFuzzyThreshold = 50
	// MaxFuzzyThreshold is the highest accepted similarity threshold
	MaxFuzzyThreshold = 100
)

// MatchingConfig holds the settings of a reconciliation run.
type MatchingConfig struct {
	// BankAmountColumn is the bank table column holding debit amounts.
	BankAmountColumn string `json:"bank_amount_column" yaml:"bank_amount_column" mapstructure:"bank_amount_column"`

	// FuzzyThreshold is a percentage similarity threshold between 50 and 100.
	// It is validated and carried into reports, but matching is always exact:
	// no amount or text similarity is computed.
	FuzzyThreshold int `json:"fuzzy_threshold" yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
}

// DefaultMatchingConfig returns the configuration used when nothing is overridden.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		BankAmountColumn: "Withdrawals",
		FuzzyThreshold:   DefaultFuzzyThreshold,
	}
}

// Validate checks if the matching configuration is valid
func (c *MatchingConfig) Validate() error {
	if c.BankAmountColumn == "" {
		return fmt.Errorf("bank amount column cannot be empty")
	}

	if c.FuzzyThreshold < MinFuzzyThreshold || c.FuzzyThreshold > MaxFuzzyThreshold {
		return fmt.Errorf("fuzzy threshold must be between %d and %d, got %d",
			MinFuzzyThreshold, MaxFuzzyThreshold, c.FuzzyThreshold)
	}

	return nil
}

// Clone returns a copy of the configuration
func (c *MatchingConfig) Clone() *MatchingConfig {
	clone := *c
	return &clone
}

// String returns a short description of the configuration
func (c *MatchingConfig) String() string {
	return fmt.Sprintf("MatchingConfig{BankAmountColumn: %s, FuzzyThreshold: %d}", c.BankAmountColumn, c.FuzzyThreshold)
}
