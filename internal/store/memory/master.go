package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
)

func cloneProject(p *project.Project) *project.Project {
	c := *p
	return &c
}

func projectNumber(p *project.Project) string { return p.Number }

func (s *Store) CreateProject(_ context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.New()
	p.Number = sequence.Next(numbers(s.projects, projectNumber), sequence.Project, sequence.Width)
	p.CreatedAt = s.stamp()
	s.projects[p.ID] = cloneProject(p)

	return nil
}

func (s *Store) GetProject(_ context.Context, id uuid.UUID) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project", id)
	}

	return cloneProject(p), nil
}

func (s *Store) ListProjects(_ context.Context) ([]*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedByNumber(s.projects, projectNumber, cloneProject, nil), nil
}

func (s *Store) UpdateProject(_ context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[p.ID]; !ok {
		return apperrors.NotFound("project", p.ID)
	}

	p.UpdatedAt = new(s.stamp())
	s.projects[p.ID] = cloneProject(p)

	return nil
}

func (s *Store) DeleteProject(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return apperrors.NotFound("project", id)
	}

	delete(s.projects, id)

	return nil
}

func cloneCustomer(c *customer.Customer) *customer.Customer {
	out := *c
	return &out
}

func customerNumber(c *customer.Customer) string { return c.Number }

func (s *Store) CreateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.New()
	c.Number = sequence.Next(numbers(s.customers, customerNumber), sequence.Customer, sequence.Width)
	c.CreatedAt = s.stamp()
	s.customers[c.ID] = cloneCustomer(c)

	return nil
}

func (s *Store) GetCustomer(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getCustomer(id)
}

func (s *Store) getCustomer(id uuid.UUID) (*customer.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, apperrors.NotFound("customer", id)
	}

	return cloneCustomer(c), nil
}

func (s *Store) ListCustomers(_ context.Context) ([]*customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedByNumber(s.customers, customerNumber, cloneCustomer, nil), nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[c.ID]; !ok {
		return apperrors.NotFound("customer", c.ID)
	}

	c.UpdatedAt = new(s.stamp())
	s.customers[c.ID] = cloneCustomer(c)

	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return apperrors.NotFound("customer", id)
	}

	delete(s.customers, id)

	return nil
}

func propertyNumber(p *property.Property) string { return p.Number }

func (s *Store) CreateProperty(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.New()
	p.Number = sequence.Next(numbers(s.properties, propertyNumber), sequence.Property, sequence.Width)
	p.CreatedAt = s.stamp()
	s.properties[p.ID] = p.Clone()

	return nil
}

func (s *Store) GetProperty(_ context.Context, id uuid.UUID) (*property.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.properties[id]
	if !ok {
		return nil, apperrors.NotFound("property", id)
	}

	return p.Clone(), nil
}

func (s *Store) ListProperties(_ context.Context, filter property.ListFilter) ([]*property.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keep := func(p *property.Property) bool {
		if filter.Status != nil && p.Status != *filter.Status {
			return false
		}

		if filter.ProjectID != nil && (p.ProjectID == nil || *p.ProjectID != *filter.ProjectID) {
			return false
		}

		return true
	}

	return sortedByNumber(s.properties, propertyNumber, (*property.Property).Clone, keep), nil
}

// UpdateProperty stores staff edits. The stored sale ledger is kept, and so
// is the sold status that comes with it.
func (s *Store) UpdateProperty(_ context.Context, p *property.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.properties[p.ID]
	if !ok {
		return apperrors.NotFound("property", p.ID)
	}

	next := p.Clone()
	next.SaleInfo = stored.Clone().SaleInfo

	if next.SaleInfo != nil {
		next.Status = property.StatusSold
	}

	next.UpdatedAt = new(s.stamp())
	s.properties[p.ID] = next

	return nil
}

func (s *Store) DeleteProperty(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[id]; !ok {
		return apperrors.NotFound("property", id)
	}

	delete(s.properties, id)

	return nil
}

func rentalNumber(r *rental.Rental) string { return r.Number }

func (s *Store) CreateRental(_ context.Context, r *rental.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.New()
	r.Number = sequence.Next(numbers(s.rentals, rentalNumber), sequence.Rental, sequence.Width)
	r.CreatedAt = s.stamp()
	s.rentals[r.ID] = r.Clone()

	return nil
}

func (s *Store) GetRental(_ context.Context, id uuid.UUID) (*rental.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rentals[id]
	if !ok {
		return nil, apperrors.NotFound("rental", id)
	}

	return r.Clone(), nil
}

func (s *Store) ListRentals(_ context.Context, filter rental.ListFilter) ([]*rental.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keep := func(r *rental.Rental) bool {
		if filter.PaymentStatus != nil && r.PaymentStatus != *filter.PaymentStatus {
			return false
		}

		if filter.PropertyID != nil && r.PropertyID != *filter.PropertyID {
			return false
		}

		if filter.CustomerID != nil && r.CustomerID != *filter.CustomerID {
			return false
		}

		return true
	}

	return sortedByNumber(s.rentals, rentalNumber, (*rental.Rental).Clone, keep), nil
}

// UpdateRental stores staff edits. Payment status and paid-through date keep
// their stored values unless override sets them.
func (s *Store) UpdateRental(_ context.Context, r *rental.Rental, override rental.LedgerOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.rentals[r.ID]
	if !ok {
		return apperrors.NotFound("rental", r.ID)
	}

	next := r.Clone()
	next.PaymentStatus = stored.PaymentStatus
	next.PaidUntil = stored.PaidUntil

	if override.PaymentStatus != nil {
		next.PaymentStatus = *override.PaymentStatus
	}

	if override.PaidUntil != nil {
		next.PaidUntil = *override.PaidUntil
	}

	next.UpdatedAt = new(s.stamp())
	s.rentals[r.ID] = next

	return nil
}

func (s *Store) DeleteRental(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rentals[id]; !ok {
		return apperrors.NotFound("rental", id)
	}

	delete(s.rentals, id)

	return nil
}
