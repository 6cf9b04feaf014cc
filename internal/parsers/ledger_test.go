package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/pkg/errors"
)

func TestLedgerLoader_BRS(t *testing.T) {
	source := writeWorkbook(t, "sap.xlsx",
		fixtureSheet{name: "Export", rows: [][]interface{}{
			{"Document Number", "Posting Date", "Amount in LC", "Text"},
			{"1900000001", "01.03.2024", 1500, "Rent"},
			{"1900000002", "02.03.2024", "abc", "Typo"},
			{nil, nil, nil, nil},
			{"1900000003", "03.03.2024", nil, "Blank amount"},
			{"1900000004", "04.03.2024", " 75.50 ", "Text amount"},
		}},
		fixtureSheet{name: "Ignored", rows: [][]interface{}{
			{"Amount in LC"},
			{999},
		}},
	)

	dataset, err := NewLedgerLoader(nil).Load(context.Background(), source, models.AccountTypeBRS)
	require.NoError(t, err)

	assert.Equal(t, "Export", dataset.Sheet)
	assert.Equal(t, "Amount in LC", dataset.AmountColumn)
	assert.Equal(t, 1, dataset.Coerced)
	require.Equal(t, 4, dataset.Table.Len(), "blank rows are skipped")

	amounts := dataset.Table.Column("Amount in LC")
	assert.Equal(t, models.CellNumber, amounts[0].Kind)
	assert.Equal(t, "1500", amounts[0].String())
	assert.True(t, amounts[1].IsEmpty(), "non-numeric amount becomes empty")
	assert.True(t, amounts[2].IsEmpty())
	assert.Equal(t, models.CellNumber, amounts[3].Kind)
	assert.Equal(t, "75.5", amounts[3].String())

	doc, _ := dataset.Table.Record(0).Get("Document Number")
	assert.Equal(t, "1900000001", doc.String())
}

func TestLedgerLoader_GL(t *testing.T) {
	source := writeFile(t, "gl.csv", "G/L Account,Amount in Local Currency,Amount in LC\n400100,250.00,1\n400100,-30,2\n")

	dataset, err := NewLedgerLoader(nil).Load(context.Background(), source, models.AccountTypeGL)
	require.NoError(t, err)

	assert.Equal(t, "Amount in Local Currency", dataset.AmountColumn)
	amounts := dataset.Table.Column("Amount in Local Currency")
	require.Len(t, amounts, 2)
	assert.Equal(t, "250", amounts[0].String())
	assert.Equal(t, "-30", amounts[1].String())
}

func TestLedgerLoader_MissingAmountColumn(t *testing.T) {
	source := writeFile(t, "sap.csv", "Document,Amount\n1,100\n")

	_, err := NewLedgerLoader(nil).Load(context.Background(), source, models.AccountTypeBRS)
	require.Error(t, err)
	assert.True(t, errors.IsMissingColumn(err))

	reconcilerErr, _ := errors.AsReconcilerError(err)
	assert.Equal(t, "Amount in LC", reconcilerErr.Context["column"])
	assert.Equal(t, "Document, Amount", reconcilerErr.Context["available_columns"])
}

func TestLedgerLoader_WrongAccountType(t *testing.T) {
	source := writeFile(t, "brs.csv", "Document,Amount in LC\n1,100\n")

	_, err := NewLedgerLoader(nil).Load(context.Background(), source, models.AccountTypeGL)
	assert.True(t, errors.IsMissingColumn(err))
}

func TestLedgerLoader_AmountOverride(t *testing.T) {
	source := writeFile(t, "custom.csv", "Doc,Betrag\n1,100\n")

	dataset, err := NewLedgerLoader(&LedgerConfig{AmountColumn: "Betrag", SkipBlankRows: true}).
		Load(context.Background(), source, models.AccountTypeBRS)
	require.NoError(t, err)
	assert.Equal(t, "Betrag", dataset.AmountColumn)
}

func TestLedgerLoader_NoFile(t *testing.T) {
	_, err := NewLedgerLoader(nil).Load(context.Background(), nil, models.AccountTypeBRS)
	require.Error(t, err)
	assert.True(t, errors.IsNoFileProvided(err))
}

func TestLedgerLoader_EmptyFile(t *testing.T) {
	source := writeFile(t, "empty.csv", "\n\n")

	_, err := NewLedgerLoader(nil).Load(context.Background(), source, models.AccountTypeBRS)
	assert.True(t, errors.IsMissingColumn(err))
}

func TestDedupeColumns(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"unique", []string{"A", "B"}, []string{"A", "B"}},
		{"repeated", []string{"Amount", "Amount", "Amount"}, []string{"Amount", "Amount.1", "Amount.2"}},
		{"suffix already taken", []string{"A", "A", "A.1"}, []string{"A", "A.2", "A.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeColumns(tt.input))
		})
	}
}
