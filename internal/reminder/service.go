package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reminder
type Repository interface {
	GetRental(ctx context.Context, id uuid.UUID) (*rental.Rental, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Service struct {
	repo    Repository
	mailer  Mailer
	company string
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, mailer Mailer, company string, opts ...Option) *Service {
	s := &Service{repo: repo, mailer: mailer, company: company, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Send emails the tenant of a rental about their next or overdue payment.
// It fails with a NotFoundError when the rental or the tenant's email is missing.
func (s *Service) Send(ctx context.Context, rentalID uuid.UUID) (bool, error) {
	r, err := s.repo.GetRental(ctx, rentalID)
	if err != nil {
		return false, err
	}

	tenant, err := s.repo.GetCustomer(ctx, r.CustomerID)
	if err != nil {
		return false, err
	}

	if strings.TrimSpace(tenant.Email) == "" {
		return false, &apperrors.NotFoundError{Entity: "tenant email", ID: tenant.Number}
	}

	label := r.Number
	if p, err := s.repo.GetProperty(ctx, r.PropertyID); err == nil {
		label = p.Label()
	} else {
		slog.Warn("reminder without property", "rental", r.Number, "property_id", r.PropertyID, "error", err)
	}

	msg := s.compose(r, tenant, label)

	if err := s.mailer.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("sending reminder for %s: %w", r.Number, err)
	}

	slog.Info("reminder sent", "rental", r.Number, "to", tenant.Email)

	return true, nil
}

func (s *Service) compose(r *rental.Rental, tenant *customer.Customer, propertyLabel string) Message {
	paidThrough := r.PaidThrough()
	overdue := r.PaymentStatus == rental.StatusOverdue || paidThrough.Before(calendar.Day(s.now()))
	rent := r.MonthlyRent.StringFixed(2)

	var sb strings.Builder

	fmt.Fprintf(&sb, "Dear %s,\n\n", tenant.DisplayName())
	fmt.Fprintf(&sb, "This is a reminder about the rent for %s (lease %s).\n", propertyLabel, r.Number)
	fmt.Fprintf(&sb, "Rent is paid through %s. ", paidThrough.Format("2 January 2006"))

	if overdue {
		fmt.Fprintf(&sb, "Your payment of %s is overdue. Please settle it at your earliest convenience.\n", rent)
	} else {
		fmt.Fprintf(&sb, "Your next payment of %s is due on that date.\n", rent)
	}

	fmt.Fprintf(&sb, "\nKind regards,\n%s\n", s.company)

	subject := "Rent reminder " + r.Number
	if overdue {
		subject = "Overdue rent " + r.Number
	}

	return Message{To: tenant.Email, Subject: subject, Body: sb.String()}
}
