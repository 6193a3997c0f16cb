package receipt

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

func TestRenderer_Render(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r := NewRenderer("Telal Albedaya Real Estate", WithClock(func() time.Time { return now }))

	tests := []struct {
		name string
		tx   *transaction.Transaction
	}{
		{
			name: "rent receipt",
			tx: &transaction.Transaction{
				ID:            uuid.New(),
				Number:        "TPL-0001",
				Category:      transaction.CategoryIncome,
				Type:          transaction.TypeRentPayment,
				Amount:        decimal.NewFromInt(500),
				Payer:         "Aisha Al Balushi",
				PaymentMethod: transaction.MethodBankTransfer,
				Date:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				Display:       transaction.Display{PropertyNumber: "PRP-0001", PropertyTitle: "Sea view flat"},
			},
		},
		{
			name: "sale receipt with balance",
			tx: &transaction.Transaction{
				ID:            uuid.New(),
				Number:        "TPL-0002",
				Category:      transaction.CategoryIncome,
				Type:          transaction.TypeSalePayment,
				Amount:        decimal.NewFromInt(20000),
				Payer:         "Aisha Al Balushi",
				PaymentMethod: transaction.MethodCheque,
				Date:          time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
				IsSale:        true,
				SaleDetails: &transaction.SaleDetails{
					TotalPrice:      decimal.NewFromInt(50000),
					PaidAmount:      decimal.NewFromInt(20000),
					RemainingAmount: decimal.NewFromInt(30000),
				},
			},
		},
		{
			name: "expense voucher",
			tx: &transaction.Transaction{
				ID:            uuid.New(),
				Number:        "TPL-0003",
				Category:      transaction.CategoryExpense,
				Type:          transaction.TypeMaintenance,
				Amount:        decimal.RequireFromString("120.500"),
				Payee:         "Gulf Plumbing LLC",
				PaymentMethod: transaction.MethodCash,
				Date:          time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
				Description:   "Water heater replacement",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			require.NoError(t, r.Render(&buf, tt.tx))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestRows(t *testing.T) {
	tx := &transaction.Transaction{
		Category:      transaction.CategoryExpense,
		Type:          transaction.TypeLegalFees,
		Amount:        decimal.NewFromInt(75),
		Payee:         "Muscat Law Office",
		PaymentMethod: transaction.MethodBankTransfer,
		Reference:     "INV-88",
		Display:       transaction.Display{ProjectName: "Al Mouj Towers"},
	}

	assert.Equal(t, [][2]string{
		{"Paid to", "Muscat Law Office"},
		{"Amount", "75.00"},
		{"Payment method", "Bank transfer"},
		{"Type", "Legal fees"},
		{"Project", "Al Mouj Towers"},
		{"Reference", "INV-88"},
	}, rows(tx))
}

func TestFilename(t *testing.T) {
	id := uuid.New()

	assert.Equal(t, "TPL-0042.pdf", Filename(&transaction.Transaction{ID: id, Number: "TPL-0042"}))
	assert.Equal(t, id.String()+".pdf", Filename(&transaction.Transaction{ID: id}))
}
