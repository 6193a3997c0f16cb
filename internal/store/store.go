// Package store persists the back office in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func lockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))

	return int64(h.Sum64())
}

// numbered runs insert inside a database transaction that holds the advisory
// lock of table, passing it the next free sequence number.
func (s *Store) numbered(ctx context.Context, table string, prefix sequence.Prefix, insert func(tx *sql.Tx, number string) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("beginning transaction: %w", err))
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey(table)); err != nil {
		return apperrors.Storage(fmt.Errorf("acquiring %s lock: %w", table, err))
	}

	existing, err := listNumbers(ctx, dbTx, table)
	if err != nil {
		return err
	}

	if err := insert(dbTx, sequence.Next(existing, prefix, sequence.Width)); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return apperrors.Storage(fmt.Errorf("committing transaction: %w", err))
	}

	return nil
}

// listNumbers reads the sequence numbers of table. The name is never user input.
func listNumbers(ctx context.Context, q querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT number FROM "+table)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("listing %s numbers: %w", table, err))
	}
	defer rows.Close()

	var numbers []string

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scanning number: %w", err))
		}

		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(fmt.Errorf("iterating %s numbers: %w", table, err))
	}

	return numbers, nil
}

// expectOne turns an update or delete that touched no row into a NotFoundError.
func expectOne(res sql.Result, err error, entity string, id fmt.Stringer) error {
	if err != nil {
		return apperrors.Storage(fmt.Errorf("writing %s: %w", entity, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage(fmt.Errorf("writing %s: %w", entity, err))
	}

	if n == 0 {
		return apperrors.NotFound(entity, id)
	}

	return nil
}

func notFoundOr(err error, entity string, id fmt.Stringer) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(entity, id)
	}

	return apperrors.Storage(fmt.Errorf("getting %s: %w", entity, err))
}

// jsonb marshals v for a JSONB column. A nil pointer becomes SQL NULL.
func jsonb[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// fromJSONB decodes a nullable JSONB column into a new T, or nil.
func fromJSONB[T any](raw []byte) (*T, error) {
	if raw == nil {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}

	return &v, nil
}
