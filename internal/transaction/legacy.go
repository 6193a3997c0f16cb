package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

// Record is either a current *Transaction or a LegacyReceipt read from old
// data. Normalize turns any Record into a *Transaction.
type Record interface {
	record()
}

func (*Transaction) record() {}

// LegacyReceipt is the shape of receipts and of transactions written before
// category existed. Enum fields hold raw stored text.
type LegacyReceipt struct {
	ID            uuid.UUID
	Number        string // RCP-0001, or TPL-0001 for uncategorised transactions
	Category      string
	Type          string
	Amount        decimal.Decimal
	ReceivedFrom  string
	PaidTo        string
	PaymentMethod string
	Date          time.Time
	Description   string
	Reference     string
	ProjectID     *uuid.UUID
	PropertyID    *uuid.UUID
	CustomerID    *uuid.UUID
	RentalID      *uuid.UUID
	CreatedAt     time.Time
}

func (LegacyReceipt) record() {}

var legacyMethods = map[string]PaymentMethod{
	"":              MethodCash,
	"cash":          MethodCash,
	"card":          MethodCard,
	"credit card":   MethodCard,
	"bank_transfer": MethodBankTransfer,
	"bank transfer": MethodBankTransfer,
	"transfer":      MethodBankTransfer,
	"cheque":        MethodCheque,
	"check":         MethodCheque,
}

// Normalize migrates r to the current shape. A missing category is income.
func Normalize(r Record) (*Transaction, error) {
	switch v := r.(type) {
	case *Transaction:
		return v, nil
	case LegacyReceipt:
		return v.migrate()
	case *LegacyReceipt:
		return v.migrate()
	}

	return nil, fmt.Errorf("unknown record shape %T", r)
}

func (l LegacyReceipt) migrate() (*Transaction, error) {
	tx := &Transaction{
		ID:          l.ID,
		Number:      l.Number,
		Category:    CategoryIncome,
		Type:        TypeRentPayment,
		Amount:      l.Amount,
		Date:        l.Date,
		Description: l.Description,
		Reference:   l.Reference,
		ProjectID:   l.ProjectID,
		PropertyID:  l.PropertyID,
		CustomerID:  l.CustomerID,
		RentalID:    l.RentalID,
		CreatedAt:   l.CreatedAt,
	}

	if c := strings.ToLower(strings.TrimSpace(l.Category)); c != "" {
		category, err := ParseCategory(c)
		if err != nil {
			return nil, fmt.Errorf("legacy record %s: %w", l.Number, err)
		}

		tx.Category = category
	}

	if tx.Category == CategoryExpense {
		tx.Type = TypeOtherExpense
	}

	if t := strings.ToLower(strings.TrimSpace(l.Type)); t != "" {
		typ, err := ParseType(t)
		if err != nil {
			return nil, fmt.Errorf("legacy record %s: %w", l.Number, err)
		}

		tx.Type = typ
	}

	method, ok := legacyMethods[strings.ToLower(strings.TrimSpace(l.PaymentMethod))]
	if !ok {
		return nil, fmt.Errorf("legacy record %s: %w", l.Number,
			apperrors.Invalid("paymentMethod", "oneof", fmt.Sprintf("unknown payment method %q", l.PaymentMethod)))
	}

	tx.PaymentMethod = method
	tx.IsSale = tx.Type == TypeSalePayment

	if tx.Category == CategoryExpense {
		tx.Payee = l.PaidTo
	} else {
		tx.Payer = l.ReceivedFrom
	}

	return tx, nil
}
