package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/validation"
)

// Repository persists customers. CreateCustomer assigns ID, Number and CreatedAt.
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name       string `json:"name" validate:"notblank"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
	NationalID string `json:"nationalId"`
	Address    string `json:"address"`
	Notes      string `json:"notes"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	params.Email = strings.TrimSpace(params.Email)

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	c := &Customer{
		Name:       strings.TrimSpace(params.Name),
		Email:      params.Email,
		Phone:      params.Phone,
		NationalID: params.NationalID,
		Address:    params.Address,
		Notes:      params.Notes,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := validation.Struct(CreateParams{Name: c.Name, Email: c.Email}); err != nil {
		return err
	}

	return s.repo.UpdateCustomer(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCustomer(ctx, id)
}
