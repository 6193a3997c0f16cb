package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
)

//go:generate mockgen -source=engine.go -destination=store_mock.go -package=settlement

// Store is the slice of a unit of work that settlement reads and writes.
type Store interface {
	GetRental(ctx context.Context, id uuid.UUID) (*rental.Rental, error)
	UpdateRental(ctx context.Context, r *rental.Rental) error
	GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error)
	UpdateProperty(ctx context.Context, p *property.Property) error
	// CountSalePayments counts persisted sale_payment transactions for a property.
	CountSalePayments(ctx context.Context, propertyID uuid.UUID) (int, error)
}

type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SettleRent advances the paid-through date of the paid rental and saves it.
// A missing rental yields a *SkippedError.
func (e *Engine) SettleRent(ctx context.Context, store Store, pay RentPayment) (*rental.Rental, error) {
	r, err := store.GetRental(ctx, pay.RentalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &SkippedError{Entity: "rental", ID: pay.RentalID}
		}

		return nil, fmt.Errorf("loading rental: %w", err)
	}

	next := ApplyRentPayment(r, pay.Amount, e.now().UTC())
	if err := store.UpdateRental(ctx, next); err != nil {
		return nil, fmt.Errorf("saving rental: %w", err)
	}

	return next, nil
}

// SettleSale adds the payment to the property's sale ledger and saves it.
// It must run before the payment itself is persisted, since the first payment
// is detected by the absence of earlier ones. A missing property yields a
// *SkippedError.
func (e *Engine) SettleSale(ctx context.Context, store Store, pay SalePayment) (*property.Property, error) {
	p, err := store.GetProperty(ctx, pay.PropertyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &SkippedError{Entity: "property", ID: pay.PropertyID}
		}

		return nil, fmt.Errorf("loading property: %w", err)
	}

	earlier, err := store.CountSalePayments(ctx, pay.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("counting sale payments: %w", err)
	}

	next := ApplySalePayment(p, pay, earlier == 0, e.now().UTC())
	if err := store.UpdateProperty(ctx, next); err != nil {
		return nil, fmt.Errorf("saving property: %w", err)
	}

	return next, nil
}
