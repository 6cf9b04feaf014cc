package matcher

import (
	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/models"
)

// AmountIndex counts occurrences of amounts in one column. Keys are
// scale-independent, so 150 and 150.00 count as the same amount.
type AmountIndex struct {
	// counts maps amount keys to the number of rows carrying that amount
	counts map[string]int

	// amounts maps amount keys to the first decimal seen for that key
	amounts map[string]decimal.Decimal

	// order holds distinct keys in first-seen order
	order []string

	// nulls counts cells that could not be read as an amount
	nulls int
}

// NewAmountIndex creates an empty index
func NewAmountIndex() *AmountIndex {
	return &AmountIndex{
		counts:  make(map[string]int),
		amounts: make(map[string]decimal.Decimal),
	}
}

// NewAmountIndexFromCells indexes every cell of a column, coercing each to an amount
func NewAmountIndexFromCells(cells []models.Cell) *AmountIndex {
	index := NewAmountIndex()
	for _, cell := range cells {
		if amount, ok := models.CoerceAmount(cell); ok {
			index.Add(amount)
		} else {
			index.nulls++
		}
	}
	return index
}

// Add records one occurrence of an amount
func (ai *AmountIndex) Add(amount decimal.Decimal) {
	key := models.AmountKey(amount)
	if _, exists := ai.counts[key]; !exists {
		ai.order = append(ai.order, key)
		ai.amounts[key] = amount
	}
	ai.counts[key]++
}

// Count returns how many rows carry the amount
func (ai *AmountIndex) Count(amount decimal.Decimal) int {
	return ai.counts[models.AmountKey(amount)]
}

// Contains reports whether any row carries the amount
func (ai *AmountIndex) Contains(amount decimal.Decimal) bool {
	return ai.Count(amount) > 0
}

// Distinct returns the distinct amounts in first-seen order
func (ai *AmountIndex) Distinct() []decimal.Decimal {
	out := make([]decimal.Decimal, len(ai.order))
	for i, key := range ai.order {
		out[i] = ai.amounts[key]
	}
	return out
}

// Difference returns the distinct amounts of ai that other does not contain,
// in ai's first-seen order
func (ai *AmountIndex) Difference(other *AmountIndex) []decimal.Decimal {
	var out []decimal.Decimal
	for _, key := range ai.order {
		if other.counts[key] == 0 {
			out = append(out, ai.amounts[key])
		}
	}
	return out
}

// Len returns the number of distinct amounts
func (ai *AmountIndex) Len() int {
	return len(ai.order)
}

// Total returns the number of indexed non-null rows
func (ai *AmountIndex) Total() int {
	total := 0
	for _, n := range ai.counts {
		total += n
	}
	return total
}

// Nulls returns the number of cells that were not amounts
func (ai *AmountIndex) Nulls() int {
	return ai.nulls
}
