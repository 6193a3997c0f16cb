// Package settlement applies the financial effect of recorded payments onto
// rentals and properties.
package settlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
)

// ErrSkipped is matched by every SkippedError.
var ErrSkipped = errors.New("settlement skipped")

// SkippedError reports a payment whose rental or property could not be
// resolved. The payment itself is still recorded.
type SkippedError struct {
	Entity string
	ID     uuid.UUID
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("settlement skipped: %s %s not found", e.Entity, e.ID)
}

func (e *SkippedError) Is(target error) bool {
	return target == ErrSkipped
}

// RentPayment is a rent_payment transaction reduced to what settlement reads.
type RentPayment struct {
	RentalID uuid.UUID
	Amount   decimal.Decimal
}

// SalePayment is a sale_payment transaction reduced to what settlement reads.
type SalePayment struct {
	PropertyID uuid.UUID
	CustomerID *uuid.UUID
	Date       time.Time
	Amount     decimal.Decimal
	TotalPrice decimal.Decimal
}

// MonthsCovered is the number of whole months amount pays for. Remainders are
// dropped and a non-positive rent covers nothing.
func MonthsCovered(amount, monthlyRent decimal.Decimal) int {
	if !monthlyRent.IsPositive() || !amount.IsPositive() {
		return 0
	}

	return int(amount.Div(monthlyRent).Floor().IntPart())
}

// ApplyRentPayment returns r advanced by the months amount covers. r is not modified.
func ApplyRentPayment(r *rental.Rental, amount decimal.Decimal, now time.Time) *rental.Rental {
	next := r.Clone()

	next.PaidUntil = calendar.AddMonths(r.PaidThrough(), MonthsCovered(amount, r.MonthlyRent))

	if next.PaidUntil.Before(calendar.Day(now)) {
		next.PaymentStatus = rental.StatusOverdue
	} else {
		next.PaymentStatus = rental.StatusPaid
	}

	next.UpdatedAt = &now

	return next
}

// ApplySalePayment returns p with the payment added to its sale ledger. The
// first payment marks the property sold and opens the ledger; later payments
// only accumulate. The declared total of the latest payment always wins.
// p is not modified.
func ApplySalePayment(p *property.Property, pay SalePayment, first bool, now time.Time) *property.Property {
	next := p.Clone()

	if first || next.SaleInfo == nil {
		next.Status = property.StatusSold
		next.SaleInfo = &property.SaleInfo{
			BuyerID:    pay.CustomerID,
			SaleDate:   calendar.Day(pay.Date),
			PaidAmount: pay.Amount,
		}
	} else {
		next.SaleInfo.PaidAmount = next.SaleInfo.PaidAmount.Add(pay.Amount)
	}

	info := next.SaleInfo
	info.TotalPrice = pay.TotalPrice
	info.RemainingAmount = decimal.Max(info.TotalPrice.Sub(info.PaidAmount), decimal.Zero)

	if info.PaidAmount.GreaterThanOrEqual(info.TotalPrice) {
		info.PaymentStatus = property.SaleCompleted
	} else {
		info.PaymentStatus = property.SalePartial
	}

	next.UpdatedAt = &now

	return next
}
