package project

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/validation"
)

// Repository persists projects. CreateProject assigns ID, Number and CreatedAt.
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name        string `json:"name" validate:"notblank"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Status      Status `json:"status" validate:"oneof=planning in_progress completed on_hold"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	if params.Status == "" {
		params.Status = StatusPlanning
	}

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	p := &Project{
		Name:        params.Name,
		Location:    params.Location,
		Description: params.Description,
		Status:      params.Status,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *Service) Update(ctx context.Context, p *Project) error {
	if err := validation.Struct(CreateParams{Name: p.Name, Status: p.Status}); err != nil {
		return err
	}

	return s.repo.UpdateProject(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProject(ctx, id)
}
