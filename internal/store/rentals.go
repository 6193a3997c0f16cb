package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
)

const selectRentalColumns = `
	id, number, property_id, customer_id, monthly_rent, deposit_amount, lease_start, lease_end,
	due_day, payment_status, paid_until, notes, created_at, updated_at
`

func scanRental(s scanner) (*rental.Rental, error) {
	var r rental.Rental

	var status string

	if err := s.Scan(
		&r.ID, &r.Number, &r.PropertyID, &r.CustomerID, &r.MonthlyRent, &r.DepositAmount,
		&r.LeaseStart, &r.LeaseEnd, &r.DueDay, &status, &r.PaidUntil, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.PaymentStatus = rental.PaymentStatus(status)

	return &r, nil
}

func (s *Store) CreateRental(ctx context.Context, r *rental.Rental) error {
	return s.numbered(ctx, "rentals", sequence.Rental, func(tx *sql.Tx, number string) error {
		query := `
			INSERT INTO rentals (
				number, property_id, customer_id, monthly_rent, deposit_amount, lease_start, lease_end,
				due_day, payment_status, paid_until, notes, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
			RETURNING id, number, created_at
		`

		err := tx.QueryRowContext(ctx, query,
			number, r.PropertyID, r.CustomerID, r.MonthlyRent, r.DepositAmount, r.LeaseStart, r.LeaseEnd,
			r.DueDay, r.PaymentStatus, r.PaidThrough(), r.Notes,
		).Scan(&r.ID, &r.Number, &r.CreatedAt)
		if err != nil {
			return apperrors.Storage(fmt.Errorf("creating rental: %w", err))
		}

		return nil
	})
}

func (s *Store) GetRental(ctx context.Context, id uuid.UUID) (*rental.Rental, error) {
	return getRental(ctx, s.db, id, false)
}

func getRental(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*rental.Rental, error) {
	query := `SELECT ` + selectRentalColumns + ` FROM rentals WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	r, err := scanRental(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "rental", id)
	}

	return r, nil
}

func (s *Store) ListRentals(ctx context.Context, filter rental.ListFilter) ([]*rental.Rental, error) {
	query := `SELECT ` + selectRentalColumns + ` FROM rentals WHERE TRUE`

	var args []any

	if filter.PaymentStatus != nil {
		args = append(args, *filter.PaymentStatus)
		query += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}

	if filter.PropertyID != nil {
		args = append(args, *filter.PropertyID)
		query += fmt.Sprintf(" AND property_id = $%d", len(args))
	}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}

	query += " ORDER BY number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("listing rentals: %w", err))
	}
	defer rows.Close()

	var rentals []*rental.Rental

	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scanning rental: %w", err))
		}

		rentals = append(rentals, r)
	}

	return rentals, rows.Err()
}

// UpdateRental stores staff edits. payment_status and paid_until keep their
// stored values unless override sets them.
func (s *Store) UpdateRental(ctx context.Context, r *rental.Rental, override rental.LedgerOverride) error {
	var status sql.NullString
	if override.PaymentStatus != nil {
		status = sql.NullString{String: string(*override.PaymentStatus), Valid: true}
	}

	var paidUntil sql.NullTime
	if override.PaidUntil != nil {
		paidUntil = sql.NullTime{Time: *override.PaidUntil, Valid: true}
	}

	query := `
		UPDATE rentals
		SET property_id = $1, customer_id = $2, monthly_rent = $3, deposit_amount = $4, lease_start = $5,
			lease_end = $6, due_day = $7, payment_status = COALESCE($8::text, payment_status),
			paid_until = COALESCE($9::date, paid_until), notes = $10, updated_at = NOW()
		WHERE id = $11
	`

	res, err := s.db.ExecContext(ctx, query,
		r.PropertyID, r.CustomerID, r.MonthlyRent, r.DepositAmount, r.LeaseStart,
		r.LeaseEnd, r.DueDay, status, paidUntil, r.Notes, r.ID,
	)

	return expectOne(res, err, "rental", r.ID)
}

// settleRental writes the whole row. It runs inside the locked unit of work only.
func settleRental(ctx context.Context, q querier, r *rental.Rental) error {
	query := `
		UPDATE rentals
		SET property_id = $1, customer_id = $2, monthly_rent = $3, deposit_amount = $4, lease_start = $5,
			lease_end = $6, due_day = $7, payment_status = $8, paid_until = $9, notes = $10, updated_at = NOW()
		WHERE id = $11
	`

	res, err := q.ExecContext(ctx, query,
		r.PropertyID, r.CustomerID, r.MonthlyRent, r.DepositAmount, r.LeaseStart,
		r.LeaseEnd, r.DueDay, r.PaymentStatus, r.PaidThrough(), r.Notes, r.ID,
	)

	return expectOne(res, err, "rental", r.ID)
}

func (s *Store) DeleteRental(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)

	return expectOne(res, err, "rental", id)
}
