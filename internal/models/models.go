package models

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind identifies which value a Cell carries
type CellKind int

const (
	// CellEmpty is a blank spreadsheet cell
	CellEmpty CellKind = iota
	// CellText is a string cell
	CellText
	// CellNumber is a numeric cell
	CellNumber
	// CellDate is a date or date-time cell
	CellDate
)

// String returns the string representation of CellKind
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is a single spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Time   time.Time
}

// EmptyCell returns a blank cell
func EmptyCell() Cell {
	return Cell{Kind: CellEmpty}
}

// TextCell returns a string cell
func TextCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Number: d}
}

// DateCell returns a date cell
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// IsEmpty reports whether the cell is blank
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell the way it reads in a sheet
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if !InNumberRange(c.Number) {
			return fmt.Sprintf("%se%d", c.Number.Coefficient(), c.Number.Exponent())
		}
		return c.Number.String()
	case CellDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal compares two cells by kind and value
func (c Cell) Equal(other Cell) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case CellText:
		return c.Text == other.Text
	case CellNumber:
		return c.Number.Equal(other.Number)
	case CellDate:
		return c.Time.Equal(other.Time)
	default:
		return true
	}
}

// MarshalJSON writes empty cells as null and numbers as JSON numbers
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		return []byte(c.String()), nil
	case CellDate:
		return json.Marshal(c.String())
	default:
		return []byte("null"), nil
	}
}

// Grid is the raw cell content of one sheet, row-major
type Grid [][]Cell

// Sheet is a named grid
type Sheet struct {
	Name string
	Grid Grid
}

// Table is a column-labelled set of rows. Column names may repeat; lookups by
// name resolve to the first column carrying that name. Every row is exactly as
// wide as Columns.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// NewTable creates an empty table with the given columns
func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of the first column named name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, column := range t.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a column named name exists
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// AppendRow adds a row, padding with empty cells or truncating to the table width
func (t *Table) AppendRow(cells []Cell) {
	row := make([]Cell, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Column returns the cells of the named column, or nil if it does not exist
func (t *Table) Column(name string) []Cell {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	cells := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells
}

// Record returns a read-only view of row i
func (t *Table) Record(i int) Record {
	return Record{columns: t.Columns, cells: t.Rows[i]}
}

// RenameColumn renames the first column called from. It reports whether a
// column was renamed.
func (t *Table) RenameColumn(from, to string) bool {
	idx := t.ColumnIndex(from)
	if idx < 0 {
		return false
	}
	t.Columns[idx] = to
	return true
}

// Filter returns a new table holding only the rows keep accepts
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := NewTable(t.Columns...)
	for i := range t.Rows {
		if keep(t.Record(i)) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := NewTable(t.Columns...)
	out.Rows = make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// String returns a short description of the table
func (t *Table) String() string {
	return fmt.Sprintf("Table{Columns: [%s], Rows: %d}", strings.Join(t.Columns, ", "), t.Len())
}

// Concat stacks tables vertically. The result's columns are the union of all
// input columns in first-seen order; cells missing from a table are empty.
// Rows keep their input order.
func Concat(tables ...*Table) *Table {
	out := NewTable()
	positions := make(map[string]int)

	for _, table := range tables {
		if table == nil {
			continue
		}
		// Duplicate names inside one table each get their own output column.
		mapping := make([]int, len(table.Columns))
		seen := make(map[string]int)
		for i, column := range table.Columns {
			occurrence := seen[column]
			seen[column]++
			key := fmt.Sprintf("%s\x00%d", column, occurrence)
			pos, ok := positions[key]
			if !ok {
				pos = len(out.Columns)
				positions[key] = pos
				out.Columns = append(out.Columns, column)
			}
			mapping[i] = pos
		}

		for _, row := range table.Rows {
			cells := make([]Cell, len(out.Columns))
			for i, cell := range row {
				cells[mapping[i]] = cell
			}
			out.Rows = append(out.Rows, cells)
		}
	}

	// Earlier rows are narrower than the final schema when later tables add columns.
	for i, row := range out.Rows {
		if len(row) < len(out.Columns) {
			padded := make([]Cell, len(out.Columns))
			copy(padded, row)
			out.Rows[i] = padded
		}
	}

	return out
}

// Record is one row of a Table addressed by column name
type Record struct {
	columns []string
	cells   []Cell
}

// Get returns the cell under the first column named name
func (r Record) Get(name string) (Cell, bool) {
	for i, column := range r.columns {
		if column == name {
			return r.cells[i], true
		}
	}
	return Cell{}, false
}

// Columns returns the record's column names
func (r Record) Columns() []string {
	return r.columns
}

// Cells returns the record's cells in column order
func (r Record) Cells() []Cell {
	return r.cells
}

// CoerceAmount converts a cell to a decimal amount. Numbers pass through, text
// is trimmed and parsed, and anything else (or unparseable text) is null.
func CoerceAmount(c Cell) (decimal.Decimal, bool) {
	switch c.Kind {
	case CellNumber:
		if !InNumberRange(c.Number) {
			return decimal.Decimal{}, false
		}
		return c.Number, true
	case CellText:
		d, err := ParseDecimalFromString(c.Text)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// Parsed numbers are bounded so that rendering or keying a value never
// expands it into millions of digits.
const (
	MaxNumberExponent = 64
	maxNumberLength   = 64
)

// InNumberRange reports whether d's exponent lies within ±MaxNumberExponent
func InNumberRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -MaxNumberExponent && exp <= MaxNumberExponent
}

// ParseNumber parses numeric text as written in a cell. Text longer than 64
// characters or with an exponent outside ±MaxNumberExponent is not a number.
func ParseNumber(s string) (decimal.Decimal, bool) {
	if s == "" || len(s) > maxNumberLength {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !InNumberRange(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseDecimalFromString parses a decimal value from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty decimal string")
	}

	d, ok := ParseNumber(s)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid decimal format: %s", s)
	}

	return d, nil
}

// AmountKey is the canonical matching key of an amount. Equal amounts share a
// key regardless of scale, so 150, 150.0 and 150.00 collide. The key is the
// coefficient stripped of trailing zeros plus the adjusted exponent.
func AmountKey(d decimal.Decimal) string {
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return "0"
	}

	exp := int64(d.Exponent())
	ten := big.NewInt(10)
	quo, rem := new(big.Int), new(big.Int)
	for {
		quo.QuoRem(coef, ten, rem)
		if rem.Sign() != 0 {
			break
		}
		coef.Set(quo)
		exp++
	}
	return coef.String() + "e" + strconv.FormatInt(exp, 10)
}
