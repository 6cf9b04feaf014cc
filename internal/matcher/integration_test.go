package matcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/parsers"
)

func saveWorkbook(t *testing.T, name string, sheets map[string][][]interface{}, order []string) *parsers.SourceFile {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range sheets[sheet] {
			axis, _ := excelize.CoordinatesToCellName(1, r+1)
			values := row
			if err := f.SetSheetRow(sheet, axis, &values); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	source, err := parsers.OpenSourceFile(path)
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	return source
}

// TestFullReconciliationWorkflow loads a three-sheet bank workbook and a BRS
// ledger from disk and reconciles them end to end
func TestFullReconciliationWorkflow(t *testing.T) {
	bank := saveWorkbook(t, "bank.xlsx", map[string][][]interface{}{
		"April": {
			{"ICICI Bank"},
			{"Date", "Particulars", "Withdrawals", "Deposits"},
			{"01-04-2024", "Vendor A", 1200, nil},
			{"02-04-2024", "Vendor B", 560.75, nil},
			{"03-04-2024", "Refund", nil, 90},
		},
		"Summary": {
			{"Opening balance", 10000},
			{"Closing balance", 8239.25},
		},
		"May": {
			{"Txn Date", "Particulars", "Debit", "Credit"},
			{"01-05-2024", "Vendor A", 1200, nil},
			{"04-05-2024", "Fees", 18, nil},
		},
	}, []string{"April", "Summary", "May"})

	ledger := saveWorkbook(t, "sap.xlsx", map[string][][]interface{}{
		"Data": {
			{"Document Number", "Amount in LC", "Text"},
			{"5100000001", 1200, "Vendor A"},
			{"5100000002", 560.75, "Vendor B"},
			{"5100000003", 999, "Unknown"},
			{"5100000004", "n/a", "Bad amount"},
		},
	}, []string{"Data"})

	ctx := context.Background()
	bankData, err := parsers.NewMultiSheetLoader(nil).Load(ctx, bank, "")
	if err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if bankData.Table.Len() != 4 {
		t.Fatalf("expected 4 bank rows from April and May, got %d", bankData.Table.Len())
	}

	ledgerData, err := parsers.NewLedgerLoader(nil).Load(ctx, ledger, models.AccountTypeBRS)
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}

	result, err := NewMatchingEngine(nil).Reconcile(bankData.Table, ledgerData.Table, ledgerData.AmountColumn)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	assertStatuses(t, result,
		models.StatusMultipleMatches,
		models.StatusMatched,
		models.StatusNotFoundInBank,
		models.StatusNotFoundInBank,
		models.StatusNotFoundInLedger,
	)

	if amount, ok := result.Amount(4); !ok || amount.String() != "18" {
		t.Errorf("expected bank-only amount 18, got %v", amount)
	}
}

func TestMissingLedgerColumnAbortsRun(t *testing.T) {
	ledger := saveWorkbook(t, "gl.xlsx", map[string][][]interface{}{
		"Data": {
			{"Document Number", "Amount in Local Currency"},
			{"1", 100},
		},
	}, []string{"Data"})

	_, err := parsers.NewLedgerLoader(nil).Load(context.Background(), ledger, models.AccountTypeBRS)
	if err == nil {
		t.Fatal("expected missing column error")
	}
}
