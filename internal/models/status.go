package models

import (
	"fmt"
	"strings"

	"bank-reconciliation-service/pkg/errors"
)

// Status is the reconciliation outcome attached to every output record
type Status string

const (
	// StatusMatched means exactly one bank row carries the ledger amount
	StatusMatched Status = "MATCHED"
	// StatusMultipleMatches means two or more bank rows carry the ledger amount
	StatusMultipleMatches Status = "MULTIPLE_MATCHES"
	// StatusNotFoundInBank means no bank row carries the ledger amount, or the amount is null
	StatusNotFoundInBank Status = "NOT_FOUND_IN_BANK"
	// StatusNotFoundInLedger marks a bank amount absent from the ledger
	StatusNotFoundInLedger Status = "NOT_FOUND_IN_LEDGER"
)

// AllStatuses returns every status in report order
func AllStatuses() []Status {
	return []Status{StatusMatched, StatusMultipleMatches, StatusNotFoundInBank, StatusNotFoundInLedger}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is one of the known outcomes
func (s Status) IsValid() bool {
	switch s {
	case StatusMatched, StatusMultipleMatches, StatusNotFoundInBank, StatusNotFoundInLedger:
		return true
	}
	return false
}

// Label is the human-readable name used in summaries
func (s Status) Label() string {
	switch s {
	case StatusMatched:
		return "100% Matched"
	case StatusMultipleMatches:
		return "Multiple Matches"
	case StatusNotFoundInBank:
		return "Not Found in Bank"
	case StatusNotFoundInLedger:
		return "Not Found in Ledger"
	default:
		return string(s)
	}
}

// Color is the RGB fill used when rendering the status in a spreadsheet
func (s Status) Color() string {
	switch s {
	case StatusMatched:
		return "90EE90"
	case StatusMultipleMatches:
		return "FFB347"
	case StatusNotFoundInBank:
		return "FF9999"
	case StatusNotFoundInLedger:
		return "FFFF99"
	default:
		return "FFFFFF"
	}
}

// AccountType selects the ledger export flavour and therefore its amount column
type AccountType string

const (
	// AccountTypeBRS is a bank reconciliation statement export
	AccountTypeBRS AccountType = "BRS Account"
	// AccountTypeGL is a general ledger export
	AccountTypeGL AccountType = "G/L Account"
)

// ParseAccountType accepts the display names and their short forms, case-insensitively
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brs account", "brs":
		return AccountTypeBRS, nil
	case "g/l account", "gl account", "g/l", "gl":
		return AccountTypeGL, nil
	default:
		return "", errors.ValidationError(errors.CodeInvalidAccountType, "account_type", s, nil)
	}
}

// String returns the string representation of AccountType
func (a AccountType) String() string {
	return string(a)
}

// AmountColumn is the ledger column holding transaction amounts
func (a AccountType) AmountColumn() string {
	if a == AccountTypeGL {
		return "Amount in Local Currency"
	}
	return "Amount in LC"
}

// Prefix is the short code used in output file names
func (a AccountType) Prefix() string {
	if a == AccountTypeGL {
		return "GL"
	}
	return "BRS"
}

// ReportFileName is the default spreadsheet name for a run of this account type
func (a AccountType) ReportFileName() string {
	return fmt.Sprintf("%s_Match_Status.xlsx", a.Prefix())
}

// ClassifiedRecord is one output row of a reconciliation: the ledger record's
// cells (or a synthetic row) plus its status.
type ClassifiedRecord struct {
	Cells     []Cell
	Status    Status
	Synthetic bool
}

// StatusCounts holds the number of records per status
type StatusCounts map[Status]int

// Total returns the number of classified records
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
