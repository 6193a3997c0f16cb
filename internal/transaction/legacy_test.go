package transaction_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

func TestNormalize(t *testing.T) {
	customerID := uuid.New()
	date := time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  transaction.Record
		want    func(t *testing.T, tx *transaction.Transaction)
		wantErr bool
	}{
		{
			name: "CurrentShapeUnchanged",
			record: &transaction.Transaction{
				Number:   "TPL-0001",
				Category: transaction.CategoryExpense,
				Type:     transaction.TypeTaxes,
			},
			want: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, transaction.CategoryExpense, tx.Category)
				assert.Equal(t, transaction.TypeTaxes, tx.Type)
			},
		},
		{
			name: "ReceiptWithoutCategoryIsIncome",
			record: transaction.LegacyReceipt{
				Number:        "RCP-0007",
				Amount:        decimal.NewFromInt(450),
				ReceivedFrom:  "Fatma",
				PaymentMethod: "CASH",
				Date:          date,
				CustomerID:    &customerID,
			},
			want: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, "RCP-0007", tx.Number)
				assert.Equal(t, transaction.CategoryIncome, tx.Category)
				assert.Equal(t, transaction.TypeRentPayment, tx.Type)
				assert.Equal(t, transaction.MethodCash, tx.PaymentMethod)
				assert.Equal(t, "Fatma", tx.Payer)
				assert.Equal(t, &customerID, tx.CustomerID)
				assert.True(t, tx.Amount.Equal(decimal.NewFromInt(450)))
			},
		},
		{
			name: "LegacyExpense",
			record: &transaction.LegacyReceipt{
				Number:        "TPL-0002",
				Category:      "Expense",
				PaidTo:        "Municipality",
				PaymentMethod: "Bank Transfer",
			},
			want: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, transaction.CategoryExpense, tx.Category)
				assert.Equal(t, transaction.TypeOtherExpense, tx.Type)
				assert.Equal(t, transaction.MethodBankTransfer, tx.PaymentMethod)
				assert.Equal(t, "Municipality", tx.Payee)
				assert.Empty(t, tx.Payer)
			},
		},
		{
			name: "LegacySalePayment",
			record: transaction.LegacyReceipt{
				Number: "RCP-0003",
				Type:   "sale_payment",
			},
			want: func(t *testing.T, tx *transaction.Transaction) {
				assert.True(t, tx.IsSale)
			},
		},
		{
			name:    "UnknownCategory",
			record:  transaction.LegacyReceipt{Number: "RCP-0004", Category: "refund"},
			wantErr: true,
		},
		{
			name:    "UnknownPaymentMethod",
			record:  transaction.LegacyReceipt{Number: "RCP-0005", PaymentMethod: "barter"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transaction.Normalize(tt.record)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.want(t, got)
		})
	}
}

func TestParseEnums(t *testing.T) {
	_, err := transaction.ParseCategory("INCOME")
	assert.ErrorIs(t, err, apperrors.ErrValidation, "parsing is exact, no case folding")

	c, err := transaction.ParseCategory("expense")
	require.NoError(t, err)
	assert.Equal(t, transaction.CategoryExpense, c)

	for _, typ := range transaction.Types {
		got, err := transaction.ParseType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err = transaction.ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	terms, err := transaction.ParsePaymentTerms("quarterly")
	require.NoError(t, err)
	assert.Equal(t, transaction.TermsQuarterly, terms)
}
