// Command generate writes sample bank statement and SAP ledger workbooks for
// manual runs of the reconciler.
//
//	go run ./testdata/generators -output-dir testdata/generated -sheets 3 -rows 200
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bank-reconciliation-service/internal/models"
)

// StatementGenerator produces a bank statement and a ledger that share a
// controlled share of debit amounts
type StatementGenerator struct {
	Sheets         int
	Rows           int
	StartDate      time.Time
	MinAmount      decimal.Decimal
	MaxAmount      decimal.Decimal
	MatchRatio     float64 // share of ledger lines whose amount is also debited by the bank
	DuplicateRatio float64 // share of bank debits repeated once, producing MULTIPLE_MATCHES
	AccountType    models.AccountType

	rng *rand.Rand
}

// bankLine is one row of a bank sheet
type bankLine struct {
	Date      time.Time
	Narration string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// ledgerLine is one row of the SAP export
type ledgerLine struct {
	Document string
	Posting  time.Time
	Amount   *decimal.Decimal
	Text     string
}

var narrations = []string{
	"NEFT VENDOR PAYMENT", "RTGS SUPPLIER", "CHQ CLEARING", "IMPS TRANSFER",
	"BANK CHARGES", "GST PAYMENT", "SALARY TRANSFER", "UPI COLLECTION",
}

func main() {
	var (
		outputDir      = flag.String("output-dir", "generated", "output directory for the workbooks")
		sheets         = flag.Int("sheets", 2, "number of monthly bank sheets")
		rows           = flag.Int("rows", 100, "rows per bank sheet")
		startDate      = flag.String("start-date", "2024-04-01", "first statement date (YYYY-MM-DD)")
		minAmount      = flag.Float64("min-amount", 10, "minimum amount")
		maxAmount      = flag.Float64("max-amount", 50000, "maximum amount")
		matchRatio     = flag.Float64("match-ratio", 0.8, "share of ledger lines found in the bank (0.0-1.0)")
		duplicateRatio = flag.Float64("duplicate-ratio", 0.05, "share of bank debits that appear twice (0.0-1.0)")
		accountType    = flag.String("account-type", string(models.AccountTypeBRS), `"BRS Account" or "G/L Account"`)
		seed           = flag.Int64("seed", time.Now().UnixNano(), "random seed for reproducible output")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	account, err := models.ParseAccountType(*accountType)
	if err != nil {
		log.Fatalf("Invalid account type: %v", err)
	}

	generator := &StatementGenerator{
		Sheets:         *sheets,
		Rows:           *rows,
		StartDate:      start,
		MinAmount:      decimal.NewFromFloat(*minAmount),
		MaxAmount:      decimal.NewFromFloat(*maxAmount),
		MatchRatio:     *matchRatio,
		DuplicateRatio: *duplicateRatio,
		AccountType:    account,
		rng:            rand.New(rand.NewSource(*seed)),
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	statement := generator.GenerateStatement()
	ledger := generator.GenerateLedger(statement)

	bankPath := filepath.Join(*outputDir, "bank_statement.xlsx")
	if err := generator.WriteStatement(bankPath, statement); err != nil {
		log.Fatalf("Failed to write bank statement: %v", err)
	}
	ledgerPath := filepath.Join(*outputDir, fmt.Sprintf("%s_ledger.xlsx", account.Prefix()))
	if err := generator.WriteLedger(ledgerPath, ledger); err != nil {
		log.Fatalf("Failed to write ledger: %v", err)
	}

	fmt.Printf("Bank statement: %s (%d sheets x %d rows)\n", bankPath, *sheets, *rows)
	fmt.Printf("Ledger:         %s (%d lines, column %q)\n", ledgerPath, len(ledger), account.AmountColumn())
	fmt.Printf("Seed used: %d\n", *seed)
}

// GenerateStatement creates one slice of lines per monthly sheet
func (g *StatementGenerator) GenerateStatement() [][]bankLine {
	statement := make([][]bankLine, g.Sheets)
	for s := range statement {
		month := g.StartDate.AddDate(0, s, 0)
		lines := make([]bankLine, 0, g.Rows)
		for len(lines) < g.Rows {
			line := bankLine{
				Date:      month.AddDate(0, 0, g.rng.Intn(28)),
				Narration: narrations[g.rng.Intn(len(narrations))],
			}
			// roughly a third of the rows are credits
			if g.rng.Float64() < 0.33 {
				line.Credit = g.randomAmount()
			} else {
				line.Debit = g.randomAmount()
			}
			lines = append(lines, line)

			if !line.Debit.IsZero() && len(lines) < g.Rows && g.rng.Float64() < g.DuplicateRatio {
				dup := line
				dup.Date = dup.Date.AddDate(0, 0, 1)
				lines = append(lines, dup)
			}
		}
		statement[s] = lines
	}
	return statement
}

// GenerateLedger picks ledger amounts from the statement debits at MatchRatio
// and invents the rest. One in fifty lines has no amount.
func (g *StatementGenerator) GenerateLedger(statement [][]bankLine) []ledgerLine {
	var debits []bankLine
	for _, lines := range statement {
		for _, line := range lines {
			if !line.Debit.IsZero() {
				debits = append(debits, line)
			}
		}
	}

	ledger := make([]ledgerLine, 0, len(debits))
	for i := range debits {
		line := ledgerLine{
			Document: fmt.Sprintf("19%08d", i+1),
			Posting:  debits[i].Date,
			Text:     debits[i].Narration,
		}

		switch {
		case g.rng.Float64() < 0.02:
		case g.rng.Float64() < g.MatchRatio:
			amount := debits[i].Debit
			line.Amount = &amount
		default:
			amount := g.randomAmount()
			line.Amount = &amount
		}
		ledger = append(ledger, line)
	}

	g.rng.Shuffle(len(ledger), func(i, j int) { ledger[i], ledger[j] = ledger[j], ledger[i] })
	return ledger
}

// WriteStatement writes one sheet per month with banner rows above the header
func (g *StatementGenerator) WriteStatement(path string, statement [][]bankLine) error {
	f := excelize.NewFile()
	defer f.Close()

	for s, lines := range statement {
		sheet := g.StartDate.AddDate(0, s, 0).Format("Jan 2006")
		if s == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		rows := [][]interface{}{
			{"Statement of Account"},
			{"Account No", "XXXXXXXX1234"},
			{},
			{"Date", "Narration", "Withdrawals", "Deposits"},
		}
		for _, line := range lines {
			rows = append(rows, []interface{}{
				line.Date,
				line.Narration,
				amountCell(line.Debit),
				amountCell(line.Credit),
			})
		}
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// WriteLedger writes the SAP export with the account type's amount column
func (g *StatementGenerator) WriteLedger(path string, ledger []ledgerLine) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	rows := [][]interface{}{
		{"Document Number", "Posting Date", g.AccountType.AmountColumn(), "Text"},
	}
	for _, line := range ledger {
		var amount interface{}
		if line.Amount != nil {
			amount = line.Amount.InexactFloat64()
		}
		rows = append(rows, []interface{}{line.Document, line.Posting, amount, line.Text})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func (g *StatementGenerator) randomAmount() decimal.Decimal {
	span := g.MaxAmount.Sub(g.MinAmount)
	return decimal.NewFromFloat(g.rng.Float64()).Mul(span).Add(g.MinAmount).Round(2)
}

func amountCell(d decimal.Decimal) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.InexactFloat64()
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
