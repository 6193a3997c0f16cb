package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
)

const selectCustomerColumns = `id, number, name, email, phone, national_id, address, notes, created_at, updated_at`

func scanCustomer(s scanner) (*customer.Customer, error) {
	var c customer.Customer

	if err := s.Scan(
		&c.ID, &c.Number, &c.Name, &c.Email, &c.Phone, &c.NationalID, &c.Address, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	return s.numbered(ctx, "customers", sequence.Customer, func(tx *sql.Tx, number string) error {
		query := `
			INSERT INTO customers (number, name, email, phone, national_id, address, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING id, number, created_at
		`

		err := tx.QueryRowContext(ctx, query, number, c.Name, c.Email, c.Phone, c.NationalID, c.Address, c.Notes).
			Scan(&c.ID, &c.Number, &c.CreatedAt)
		if err != nil {
			return apperrors.Storage(fmt.Errorf("creating customer: %w", err))
		}

		return nil
	})
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return getCustomer(ctx, s.db, id)
}

func getCustomer(ctx context.Context, q querier, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "customer", id)
	}

	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectCustomerColumns+` FROM customers ORDER BY number`)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("listing customers: %w", err))
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scanning customer: %w", err))
		}

		customers = append(customers, c)
	}

	return customers, rows.Err()
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, national_id = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.Email, c.Phone, c.NationalID, c.Address, c.Notes, c.ID)

	return expectOne(res, err, "customer", c.ID)
}

func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)

	return expectOne(res, err, "customer", id)
}
