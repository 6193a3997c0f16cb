package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

// scanTransaction reads a transaction row and migrates receipt-era rows, which
// have no category, through transaction.Normalize.
// Expected column order: see selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx       transaction.Transaction
		category sql.NullString
		typ      string
		method   string
		details  []byte
		display  struct{ customer, propNumber, propTitle, project sql.NullString }
	)

	if err := s.Scan(
		&tx.ID, &tx.Number, &category, &typ, &tx.Amount, &tx.Payer, &tx.Payee, &method, &tx.Date,
		&tx.Description, &tx.RawDescription, &tx.Reference,
		&tx.ProjectID, &tx.PropertyID, &tx.CustomerID, &tx.RentalID, &tx.IsSale, &details,
		&tx.CreatedAt, &tx.UpdatedAt,
		&display.customer, &display.propNumber, &display.propTitle, &display.project,
	); err != nil {
		return nil, err
	}

	tx.Display = transaction.Display{
		CustomerName:   display.customer.String,
		PropertyNumber: display.propNumber.String,
		PropertyTitle:  display.propTitle.String,
		ProjectName:    display.project.String,
	}

	if !category.Valid {
		legacy := transaction.LegacyReceipt{
			ID:            tx.ID,
			Number:        tx.Number,
			Type:          typ,
			Amount:        tx.Amount,
			ReceivedFrom:  tx.Payer,
			PaidTo:        tx.Payee,
			PaymentMethod: method,
			Date:          tx.Date,
			Description:   tx.Description,
			Reference:     tx.Reference,
			ProjectID:     tx.ProjectID,
			PropertyID:    tx.PropertyID,
			CustomerID:    tx.CustomerID,
			RentalID:      tx.RentalID,
			CreatedAt:     tx.CreatedAt,
		}

		migrated, err := transaction.Normalize(legacy)
		if err != nil {
			return nil, err
		}

		migrated.RawDescription = tx.RawDescription
		migrated.UpdatedAt = tx.UpdatedAt
		migrated.Display = tx.Display

		return migrated, nil
	}

	tx.Category = transaction.Category(category.String)
	tx.Type = transaction.Type(typ)
	tx.PaymentMethod = transaction.PaymentMethod(method)

	sd, err := fromJSONB[transaction.SaleDetails](details)
	if err != nil {
		return nil, fmt.Errorf("decoding sale details: %w", err)
	}

	tx.SaleDetails = sd

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.number, t.category, t.type, t.amount, t.payer, t.payee, t.payment_method, t.date,
	t.description, t.raw_description, t.reference,
	t.project_id, t.property_id, t.customer_id, t.rental_id, t.is_sale, t.sale_details,
	t.created_at, t.updated_at,
	c.name AS customer_name, p.number AS property_number, p.title AS property_title, pr.name AS project_name
`

const fromTransactions = `
	FROM transactions t
	LEFT JOIN customers c ON t.customer_id = c.id
	LEFT JOIN properties p ON t.property_id = p.id
	LEFT JOIN projects pr ON t.project_id = pr.id
`

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "transaction", id)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + fromTransactions + `WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Category != nil {
		// Rows without a category are income.
		query += fmt.Sprintf(" AND COALESCE(t.category, 'income') = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.PropertyID != nil {
		query += fmt.Sprintf(" AND t.property_id = $%d", argIdx)

		args = append(args, *filter.PropertyID)
		argIdx++
	}

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND t.customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY t.date ASC, t.number ASC"

	return queryTransactions(ctx, s.db, query, args...)
}

func queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]*transaction.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("listing transactions: %w", err))
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("iterating transaction rows: %w", err))
	}

	return txs, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	details, err := jsonb(tx.SaleDetails)
	if err != nil {
		return fmt.Errorf("encoding sale details: %w", err)
	}

	query := `
		UPDATE transactions
		SET category = $1, type = $2, amount = $3, payer = $4, payee = $5, payment_method = $6, date = $7,
			description = $8, reference = $9, project_id = $10, property_id = $11, customer_id = $12,
			rental_id = $13, sale_details = $14, updated_at = NOW()
		WHERE id = $15
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Category, tx.Type, tx.Amount, tx.Payer, tx.Payee, tx.PaymentMethod, tx.Date,
		tx.Description, tx.Reference, tx.ProjectID, tx.PropertyID, tx.CustomerID,
		tx.RentalID, details, tx.ID,
	)

	return expectOne(res, err, "transaction", tx.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)

	return expectOne(res, err, "transaction", id)
}

func insertTransaction(ctx context.Context, q querier, tx *transaction.Transaction) error {
	details, err := jsonb(tx.SaleDetails)
	if err != nil {
		return fmt.Errorf("encoding sale details: %w", err)
	}

	query := `
		INSERT INTO transactions (
			number, category, type, amount, payer, payee, payment_method, date, description,
			raw_description, reference, project_id, property_id, customer_id, rental_id,
			is_sale, sale_details, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRowContext(ctx, query,
		tx.Number, tx.Category, tx.Type, tx.Amount, tx.Payer, tx.Payee, tx.PaymentMethod, tx.Date,
		tx.Description, tx.RawDescription, tx.Reference, tx.ProjectID, tx.PropertyID, tx.CustomerID,
		tx.RentalID, tx.IsSale, details,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("creating transaction: %w", err))
	}

	return nil
}

// amountKey renders amounts the way decimal.Decimal.String does, so NUMERIC
// values with trailing zeros compare equal to parsed input.
func amountKey(d decimal.Decimal) string {
	return d.String()
}
