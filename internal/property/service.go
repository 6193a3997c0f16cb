package property

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/validation"
)

// Repository persists properties. CreateProperty assigns ID, Number and CreatedAt.
// UpdateProperty stores staff edits: it never writes SaleInfo, and a property
// that has a sale ledger stays sold.
type Repository interface {
	CreateProperty(ctx context.Context, p *Property) error
	GetProperty(ctx context.Context, id uuid.UUID) (*Property, error)
	ListProperties(ctx context.Context, filter ListFilter) ([]*Property, error)
	UpdateProperty(ctx context.Context, p *Property) error
	DeleteProperty(ctx context.Context, id uuid.UUID) error
}

type ListFilter struct {
	Status    *Status
	ProjectID *uuid.UUID
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ProjectID   *uuid.UUID       `json:"projectId"`
	Title       string           `json:"title"`
	Type        Type             `json:"type" validate:"oneof=apartment villa shop office land warehouse"`
	Status      Status           `json:"status" validate:"oneof=available rented sold under_maintenance"`
	Price       decimal.Decimal  `json:"price" validate:"gte=0"`
	RentalPrice *decimal.Decimal `json:"rentalPrice" validate:"omitnil,gte=0"`
	Area        decimal.Decimal  `json:"area" validate:"gte=0"`
	Bedrooms    *int             `json:"bedrooms" validate:"omitnil,gte=0"`
	Bathrooms   *int             `json:"bathrooms" validate:"omitnil,gte=0"`
	Location    string           `json:"location"`
	Address     string           `json:"address"`
	Description string           `json:"description"`
	Features    []string         `json:"features"`
	Images      []string         `json:"images"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Property, error) {
	if params.Status == "" {
		params.Status = StatusAvailable
	}

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	p := &Property{
		ProjectID:   params.ProjectID,
		Title:       params.Title,
		Type:        params.Type,
		Status:      params.Status,
		Price:       params.Price,
		RentalPrice: params.RentalPrice,
		Area:        params.Area,
		Bedrooms:    params.Bedrooms,
		Bathrooms:   params.Bathrooms,
		Location:    params.Location,
		Address:     params.Address,
		Description: params.Description,
		Features:    params.Features,
		Images:      params.Images,
	}
	if err := s.repo.CreateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	return s.repo.GetProperty(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Property, error) {
	return s.repo.ListProperties(ctx, filter)
}

// Update saves staff edits and returns the stored property. The sale ledger
// on p is ignored; only settlement writes it.
func (s *Service) Update(ctx context.Context, p *Property) (*Property, error) {
	if err := validation.Struct(CreateParams{
		Type:        p.Type,
		Status:      p.Status,
		Price:       p.Price,
		RentalPrice: p.RentalPrice,
		Area:        p.Area,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("updating property: %w", err)
	}

	return s.repo.GetProperty(ctx, p.ID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProperty(ctx, id)
}
