// Package matching remembers which customer a bank statement payer label
// belongs to, so imported income can be linked without manual lookup.
package matching

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, rawDescription string) (*uuid.UUID, error)
	CreateMapping(ctx context.Context, rawPattern string, customerID uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the customer whose learned pattern occurs in rawDescription.
// The longest pattern wins. Returns nil if nothing matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (*uuid.UUID, error) {
	return s.repo.FindMatch(ctx, rawDescription)
}

// Learn links a payer pattern to a customer.
func (s *Service) Learn(ctx context.Context, rawPattern string, customerID uuid.UUID) error {
	rawPattern = strings.TrimSpace(rawPattern)
	if rawPattern == "" {
		return apperrors.Invalid("rawPattern", "notblank", "rawPattern must not be blank")
	}

	if customerID == uuid.Nil {
		return apperrors.Invalid("customerId", "required", "customerId is required")
	}

	return s.repo.CreateMapping(ctx, rawPattern, customerID)
}
