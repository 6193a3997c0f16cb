package rental

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
	"github.com/sh44ni/telalalbedaya-sub000/internal/validation"
)

// Repository persists rentals. CreateRental assigns ID, Number and CreatedAt.
// UpdateRental ignores PaymentStatus and PaidUntil on r; it writes them only
// from override.
type Repository interface {
	CreateRental(ctx context.Context, r *Rental) error
	GetRental(ctx context.Context, id uuid.UUID) (*Rental, error)
	ListRentals(ctx context.Context, filter ListFilter) ([]*Rental, error)
	UpdateRental(ctx context.Context, r *Rental, override LedgerOverride) error
	DeleteRental(ctx context.Context, id uuid.UUID) error
}

type ListFilter struct {
	PaymentStatus *PaymentStatus
	PropertyID    *uuid.UUID
	CustomerID    *uuid.UUID
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	PropertyID    uuid.UUID       `json:"propertyId" validate:"uuid_set"`
	CustomerID    uuid.UUID       `json:"customerId" validate:"uuid_set"`
	MonthlyRent   decimal.Decimal `json:"monthlyRent" validate:"gt=0"`
	DepositAmount decimal.Decimal `json:"depositAmount" validate:"gte=0"`
	LeaseStart    time.Time       `json:"leaseStart" validate:"required"`
	LeaseEnd      time.Time       `json:"leaseEnd" validate:"required,gtfield=LeaseStart"`
	DueDay        int             `json:"dueDay" validate:"gte=1,lte=28"`
	PaymentStatus PaymentStatus   `json:"paymentStatus" validate:"oneof=paid unpaid partially_paid overdue"`
	PaidUntil     *time.Time      `json:"paidUntil"`
	Notes         string          `json:"notes"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Rental, error) {
	if params.PaymentStatus == "" {
		params.PaymentStatus = StatusUnpaid
	}

	if params.DueDay == 0 {
		params.DueDay = 1
	}

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	r := &Rental{
		PropertyID:    params.PropertyID,
		CustomerID:    params.CustomerID,
		MonthlyRent:   params.MonthlyRent,
		DepositAmount: params.DepositAmount,
		LeaseStart:    calendar.Day(params.LeaseStart),
		LeaseEnd:      calendar.Day(params.LeaseEnd),
		DueDay:        params.DueDay,
		PaymentStatus: params.PaymentStatus,
		PaidUntil:     calendar.Day(params.LeaseStart),
		Notes:         params.Notes,
	}

	if params.PaidUntil != nil {
		r.PaidUntil = calendar.Day(*params.PaidUntil)
	}

	if err := s.repo.CreateRental(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rental: %w", err)
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Rental, error) {
	return s.repo.GetRental(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Rental, error) {
	return s.repo.ListRentals(ctx, filter)
}

// Update saves staff edits and returns the stored rental. Settlement keeps
// PaymentStatus and PaidUntil current; staff change them through override.
func (s *Service) Update(ctx context.Context, r *Rental, override LedgerOverride) (*Rental, error) {
	status := r.PaymentStatus
	if override.PaymentStatus != nil {
		status = *override.PaymentStatus
	}

	if err := validation.Struct(CreateParams{
		PropertyID:    r.PropertyID,
		CustomerID:    r.CustomerID,
		MonthlyRent:   r.MonthlyRent,
		DepositAmount: r.DepositAmount,
		LeaseStart:    r.LeaseStart,
		LeaseEnd:      r.LeaseEnd,
		DueDay:        r.DueDay,
		PaymentStatus: status,
	}); err != nil {
		return nil, err
	}

	if override.PaidUntil != nil {
		override.PaidUntil = new(calendar.Day(*override.PaidUntil))
	}

	if err := s.repo.UpdateRental(ctx, r, override); err != nil {
		return nil, fmt.Errorf("updating rental: %w", err)
	}

	return s.repo.GetRental(ctx, r.ID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRental(ctx, id)
}
