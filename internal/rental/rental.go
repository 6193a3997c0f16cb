package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

// PaymentStatus of a lease. Settlement only ever writes paid or overdue;
// the other two are set by staff.
type PaymentStatus string

const (
	StatusPaid          PaymentStatus = "paid"
	StatusUnpaid        PaymentStatus = "unpaid"
	StatusPartiallyPaid PaymentStatus = "partially_paid"
	StatusOverdue       PaymentStatus = "overdue"
)

// PaymentStatuses lists every PaymentStatus in display order.
var PaymentStatuses = []PaymentStatus{StatusPaid, StatusUnpaid, StatusPartiallyPaid, StatusOverdue}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case StatusPaid, StatusUnpaid, StatusPartiallyPaid, StatusOverdue:
		return st, nil
	}

	return "", apperrors.Invalid("paymentStatus", "oneof", fmt.Sprintf("unknown payment status %q", s))
}

// Rental is a lease between one property and one tenant.
type Rental struct {
	ID            uuid.UUID
	Number        string // RNT-0001
	PropertyID    uuid.UUID
	CustomerID    uuid.UUID
	MonthlyRent   decimal.Decimal
	DepositAmount decimal.Decimal
	LeaseStart    time.Time
	LeaseEnd      time.Time
	DueDay        int
	PaymentStatus PaymentStatus
	PaidUntil     time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// LedgerOverride carries staff corrections to the fields settlement maintains.
// A nil field keeps the stored value.
type LedgerOverride struct {
	PaymentStatus *PaymentStatus
	PaidUntil     *time.Time
}

// PaidThrough is the date rent is settled up to, falling back to the lease start.
func (r *Rental) PaidThrough() time.Time {
	if r.PaidUntil.IsZero() {
		return r.LeaseStart
	}

	return r.PaidUntil
}

// Clone returns a copy that shares no pointers with r.
func (r *Rental) Clone() *Rental {
	c := *r
	if r.UpdatedAt != nil {
		c.UpdatedAt = new(*r.UpdatedAt)
	}

	return &c
}
