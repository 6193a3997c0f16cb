package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

// Category splits transactions into money in and money out.
type Category string

const (
	CategoryIncome  Category = "income"
	CategoryExpense Category = "expense"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryIncome, CategoryExpense:
		return c, nil
	}

	return "", apperrors.Invalid("category", "oneof", fmt.Sprintf("unknown category %q", s))
}

// Type is what a transaction pays for.
type Type string

const (
	TypeRentPayment   Type = "rent_payment"
	TypeSalePayment   Type = "sale_payment"
	TypeDeposit       Type = "deposit"
	TypeDepositRefund Type = "deposit_refund"
	TypeOtherIncome   Type = "other_income"
	TypeLandPurchase  Type = "land_purchase"
	TypeMaintenance   Type = "maintenance"
	TypeLegalFees     Type = "legal_fees"
	TypeCommission    Type = "commission"
	TypeUtilities     Type = "utilities"
	TypeTaxes         Type = "taxes"
	TypeInsurance     Type = "insurance"
	TypeOtherExpense  Type = "other_expense"
)

// Types lists every Type in display order.
var Types = []Type{
	TypeRentPayment, TypeSalePayment, TypeDeposit, TypeDepositRefund, TypeOtherIncome,
	TypeLandPurchase, TypeMaintenance, TypeLegalFees, TypeCommission, TypeUtilities,
	TypeTaxes, TypeInsurance, TypeOtherExpense,
}

func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}

	return "", apperrors.Invalid("type", "oneof", fmt.Sprintf("unknown transaction type %q", s))
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
)

// PaymentMethods lists every PaymentMethod in display order.
var PaymentMethods = []PaymentMethod{MethodCash, MethodCard, MethodBankTransfer, MethodCheque}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodCheque:
		return m, nil
	}

	return "", apperrors.Invalid("paymentMethod", "oneof", fmt.Sprintf("unknown payment method %q", s))
}

type PaymentTerms string

const (
	TermsLumpSum   PaymentTerms = "lump_sum"
	TermsMonthly   PaymentTerms = "monthly"
	TermsQuarterly PaymentTerms = "quarterly"
	TermsCustom    PaymentTerms = "custom"
)

func ParsePaymentTerms(s string) (PaymentTerms, error) {
	switch pt := PaymentTerms(s); pt {
	case TermsLumpSum, TermsMonthly, TermsQuarterly, TermsCustom:
		return pt, nil
	}

	return "", apperrors.Invalid("paymentTerms", "oneof", fmt.Sprintf("unknown payment terms %q", s))
}

// SaleDetails accompanies a sale payment.
type SaleDetails struct {
	TotalPrice      decimal.Decimal `json:"totalPrice" validate:"gt=0"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PaymentTerms    PaymentTerms    `json:"paymentTerms" validate:"omitempty,oneof=lump_sum monthly quarterly custom"`
}

// Transaction is a recorded financial event.
type Transaction struct {
	ID             uuid.UUID
	Number         string // TPL-0001
	Category       Category
	Type           Type
	Amount         decimal.Decimal
	Payer          string
	Payee          string
	PaymentMethod  PaymentMethod
	Date           time.Time
	Description    string
	RawDescription string // statement text of imported rows
	Reference      string
	ProjectID      *uuid.UUID
	PropertyID     *uuid.UUID
	CustomerID     *uuid.UUID
	RentalID       *uuid.UUID
	IsSale         bool
	SaleDetails    *SaleDetails
	Display        Display // Loaded via JOIN
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// Display carries the names of linked records for listings and receipts.
type Display struct {
	CustomerName   string
	PropertyNumber string
	PropertyTitle  string
	ProjectName    string
}

// Party is the payer of an income or the payee of an expense.
func (t *Transaction) Party() string {
	if t.Category == CategoryExpense {
		return t.Payee
	}

	return t.Payer
}

func (t *Transaction) IsIncome() bool {
	return t.Category != CategoryExpense
}
