package parsers

import (
	"testing"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/models"
)

func txt(s string) models.Cell { return models.TextCell(s) }

func num(s string) models.Cell { return models.NumberCell(decimal.RequireFromString(s)) }

func empty() models.Cell { return models.EmptyCell() }

func statementGrid() models.Grid {
	return models.Grid{
		{txt("HDFC BANK LTD")},
		{txt("Account No"), txt("50100012345")},
		{},
		{empty(), txt("TXN DATE"), txt("narration"), txt("WITHDRAWAL"), txt("deposit")},
		{empty(), txt("01/03/24"), txt("Rent"), num("1500.00"), empty()},
		{empty(), txt("02/03/24"), txt("Salary"), empty(), num("50000")},
		{empty(), txt("03/03/24"), txt("Charges"), txt("n/a"), empty()},
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"txn DATE", "Txn Date"},
		{"dr amount", "Dr Amount"},
		{"WITHDRAWAL", "Withdrawal"},
		{"value-date", "Value-Date"},
		{"1st value", "1St Value"},
		{"chq./ref.no.", "Chq./Ref.No."},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TitleCase(tt.input); got != tt.expected {
				t.Errorf("TitleCase(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindHeaderRow(t *testing.T) {
	extractor := NewTableExtractor(nil)

	tests := []struct {
		name     string
		grid     models.Grid
		expected int
	}{
		{"statement with preamble", statementGrid(), 3},
		{"first row", models.Grid{{txt("Date"), txt("Withdrawals")}}, 0},
		{"transaction date label", models.Grid{{txt("x")}, {txt("Transaction Date")}}, 1},
		{"label beyond fourth cell ignored", models.Grid{{empty(), empty(), empty(), empty(), txt("Date")}}, -1},
		{"trailing space is not a label", models.Grid{{txt("Date ")}}, -1},
		{"partial label is not a label", models.Grid{{txt("Value Date")}}, -1},
		{"first match wins", models.Grid{{txt("date")}, {txt("txn date")}}, 0},
		{"empty grid", models.Grid{}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractor.FindHeaderRow(tt.grid); got != tt.expected {
				t.Errorf("FindHeaderRow() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestExtract_Statement(t *testing.T) {
	extractor := NewTableExtractor(nil)

	table, headerRow := extractor.Extract(&models.Sheet{Name: "Mar", Grid: statementGrid()})

	if headerRow != 3 {
		t.Fatalf("expected header row 3, got %d", headerRow)
	}

	expected := []string{"Unnamed: 0", "Txn Date", "Narration", "Withdrawals", "Deposit"}
	if len(table.Columns) != len(expected) {
		t.Fatalf("columns = %v, want %v", table.Columns, expected)
	}
	for i, c := range expected {
		if table.Columns[i] != c {
			t.Errorf("column %d = %q, want %q", i, table.Columns[i], c)
		}
	}

	// The salary row has no withdrawal and is dropped; "n/a" is kept.
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	narration, _ := table.Record(1).Get("Narration")
	if narration.Text != "Charges" {
		t.Errorf("expected second row to be Charges, got %v", narration)
	}
}

func TestExtract_NoHeader(t *testing.T) {
	extractor := NewTableExtractor(nil)

	table, headerRow := extractor.Extract(&models.Sheet{Name: "Notes", Grid: models.Grid{{txt("Statement summary")}, {num("42")}}})

	if headerRow != -1 {
		t.Errorf("expected header row -1, got %d", headerRow)
	}
	if !table.IsEmpty() || len(table.Columns) != 0 {
		t.Errorf("expected empty table, got %s", table)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	extractor := NewTableExtractor(nil)
	sheet := &models.Sheet{Name: "Mar", Grid: statementGrid()}

	first, _ := extractor.Extract(sheet)
	second, _ := extractor.Extract(sheet)

	if first.String() != second.String() {
		t.Fatalf("extract is not deterministic: %s vs %s", first, second)
	}
	for i := range first.Rows {
		for j := range first.Rows[i] {
			if !first.Rows[i][j].Equal(second.Rows[i][j]) {
				t.Errorf("cell %d,%d differs", i, j)
			}
		}
	}
}

func TestExtract_UnnamedHeaderCells(t *testing.T) {
	extractor := NewTableExtractor(nil)

	grid := models.Grid{
		{txt("Date"), empty(), txt("Debit")},
		{txt("d1"), txt("memo"), num("10"), txt("extra")},
	}
	table, _ := extractor.Extract(&models.Sheet{Name: "S", Grid: grid})

	expected := []string{"Date", "Unnamed: 1", "Withdrawals", "Unnamed: 3"}
	for i, c := range expected {
		if table.Columns[i] != c {
			t.Errorf("column %d = %q, want %q", i, table.Columns[i], c)
		}
	}
}

func TestNormalizeDebitColumn(t *testing.T) {
	extractor := NewTableExtractor(nil)

	tests := []struct {
		name     string
		columns  []string
		renamed  bool
		expected []string
	}{
		{"withdrawal", []string{"Date", "Withdrawal"}, true, []string{"Date", "Withdrawals"}},
		{"debit", []string{"Date", "Debit"}, true, []string{"Date", "Withdrawals"}},
		{"dr amount", []string{"Date", "Dr Amount"}, true, []string{"Date", "Withdrawals"}},
		{"canonical present", []string{"Withdrawals", "Debit"}, false, []string{"Withdrawals", "Debit"}},
		{"alias order", []string{"Debit", "Withdrawal"}, true, []string{"Debit", "Withdrawals"}},
		{"no alias", []string{"Date", "Amount"}, false, []string{"Date", "Amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := models.NewTable(tt.columns...)

			if got := extractor.NormalizeDebitColumn(table); got != tt.renamed {
				t.Errorf("NormalizeDebitColumn() = %v, want %v", got, tt.renamed)
			}
			if extractor.NormalizeDebitColumn(table) {
				t.Error("second application should be a no-op")
			}
			for i, c := range tt.expected {
				if table.Columns[i] != c {
					t.Errorf("column %d = %q, want %q", i, table.Columns[i], c)
				}
			}
		})
	}
}

func TestExtract_CustomConfig(t *testing.T) {
	config := DefaultBankConfig()
	config.HeaderLabels = append(config.HeaderLabels, "value date")
	config.DebitAliases = append(config.DebitAliases, "Paid Out")
	extractor := NewTableExtractor(config)

	grid := models.Grid{
		{txt("Value Date"), txt("Paid Out")},
		{txt("d1"), num("5")},
	}
	table, headerRow := extractor.Extract(&models.Sheet{Name: "S", Grid: grid})

	if headerRow != 0 || !table.HasColumn("Withdrawals") || table.Len() != 1 {
		t.Errorf("unexpected extraction: header=%d table=%s", headerRow, table)
	}
}

func TestBankConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*BankConfig)
		wantErr bool
	}{
		{"default", func(*BankConfig) {}, false},
		{"no labels", func(c *BankConfig) { c.HeaderLabels = nil }, true},
		{"upper-case label", func(c *BankConfig) { c.HeaderLabels = []string{"Date"} }, true},
		{"zero width", func(c *BankConfig) { c.HeaderScanWidth = 0 }, true},
		{"no debit column", func(c *BankConfig) { c.DebitColumn = " " }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultBankConfig()
			tt.modify(config)
			if err := config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
