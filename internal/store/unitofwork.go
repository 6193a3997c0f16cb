package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

// ledgerLockKey serializes every writer of transactions and the rental and
// property ledgers they settle.
var ledgerLockKey = lockKey("transactions")

type unitOfWork struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (transaction.UnitOfWork, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("beginning unit of work: %w", err))
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerLockKey); err != nil {
		dbTx.Rollback()
		return nil, apperrors.Storage(fmt.Errorf("acquiring ledger lock: %w", err))
	}

	return &unitOfWork{tx: dbTx}, nil
}

func (u *unitOfWork) Commit() error {
	return apperrors.Storage(u.tx.Commit())
}

// Rollback is safe to call after Commit.
func (u *unitOfWork) Rollback() error {
	if err := u.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return apperrors.Storage(err)
	}

	return nil
}

func (u *unitOfWork) GetRental(ctx context.Context, id uuid.UUID) (*rental.Rental, error) {
	return getRental(ctx, u.tx, id, true)
}

func (u *unitOfWork) UpdateRental(ctx context.Context, r *rental.Rental) error {
	return settleRental(ctx, u.tx, r)
}

func (u *unitOfWork) GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return getProperty(ctx, u.tx, id, true)
}

func (u *unitOfWork) UpdateProperty(ctx context.Context, p *property.Property) error {
	return settleProperty(ctx, u.tx, p)
}

func (u *unitOfWork) CountSalePayments(ctx context.Context, propertyID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE type = $1 AND property_id = $2`

	var n int
	if err := u.tx.QueryRowContext(ctx, query, transaction.TypeSalePayment, propertyID).Scan(&n); err != nil {
		return 0, apperrors.Storage(fmt.Errorf("counting sale payments: %w", err))
	}

	return n, nil
}

func (u *unitOfWork) TransactionNumbers(ctx context.Context) ([]string, error) {
	return listNumbers(ctx, u.tx, "transactions")
}

func (u *unitOfWork) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return getCustomer(ctx, u.tx, id)
}

func (u *unitOfWork) FindDuplicates(ctx context.Context, params []transaction.RecordParams) ([]*transaction.Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date           string
		Amount         string
		Category       transaction.Category
		RawDescription string
	}

	// Find min/max dates and build lookup set.
	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:           p.Date.Format(time.DateOnly),
			Amount:         amountKey(p.Amount),
			Category:       p.Category,
			RawDescription: p.RawDescription,
		}] = struct{}{}
	}

	query := `SELECT ` + selectTransactionColumns + fromTransactions + `
		WHERE t.date >= $1 AND t.date <= $2
		ORDER BY t.date ASC, t.number ASC`

	candidates, err := queryTransactions(ctx, u.tx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}

	var duplicates []*transaction.Transaction

	for _, tx := range candidates {
		k := lookupKey{
			Date:           tx.Date.Format(time.DateOnly),
			Amount:         amountKey(tx.Amount),
			Category:       tx.Category,
			RawDescription: tx.RawDescription,
		}

		if _, found := keySet[k]; found {
			duplicates = append(duplicates, tx)
		}
	}

	return duplicates, nil
}

func (u *unitOfWork) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for _, tx := range txs {
		if err := insertTransaction(ctx, u.tx, tx); err != nil {
			return err
		}
	}

	return nil
}
