package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

func (s *Store) FindMatch(ctx context.Context, rawDescription string) (*uuid.UUID, error) {
	query := `
		SELECT customer_id
		FROM customer_mappings
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var id uuid.UUID

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperrors.Storage(fmt.Errorf("finding match: %w", err))
	}

	return &id, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern string, customerID uuid.UUID) error {
	query := `
		INSERT INTO customer_mappings (raw_pattern, customer_id, created_at)
		VALUES ($1, $2, NOW())
	`

	if _, err := s.db.ExecContext(ctx, query, rawPattern, customerID); err != nil {
		return apperrors.Storage(fmt.Errorf("creating mapping: %w", err))
	}

	return nil
}
