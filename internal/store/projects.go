package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
)

const selectProjectColumns = `id, number, name, location, description, status, created_at, updated_at`

func scanProject(s scanner) (*project.Project, error) {
	var p project.Project

	var status string

	if err := s.Scan(&p.ID, &p.Number, &p.Name, &p.Location, &p.Description, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.Status = project.Status(status)

	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	return s.numbered(ctx, "projects", sequence.Project, func(tx *sql.Tx, number string) error {
		query := `
			INSERT INTO projects (number, name, location, description, status, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			RETURNING id, number, created_at
		`

		err := tx.QueryRowContext(ctx, query, number, p.Name, p.Location, p.Description, p.Status).
			Scan(&p.ID, &p.Number, &p.CreatedAt)
		if err != nil {
			return apperrors.Storage(fmt.Errorf("creating project: %w", err))
		}

		return nil
	})
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	query := `SELECT ` + selectProjectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "project", id)
	}

	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*project.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectProjectColumns+` FROM projects ORDER BY number`)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("listing projects: %w", err))
	}
	defer rows.Close()

	var projects []*project.Project

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scanning project: %w", err))
		}

		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, p *project.Project) error {
	query := `
		UPDATE projects
		SET name = $1, location = $2, description = $3, status = $4, updated_at = NOW()
		WHERE id = $5
	`

	res, err := s.db.ExecContext(ctx, query, p.Name, p.Location, p.Description, p.Status, p.ID)

	return expectOne(res, err, "project", p.ID)
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)

	return expectOne(res, err, "project", id)
}
