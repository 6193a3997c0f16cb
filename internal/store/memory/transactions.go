package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

func cloneTransaction(t *transaction.Transaction) *transaction.Transaction {
	c := *t
	if t.SaleDetails != nil {
		c.SaleDetails = new(*t.SaleDetails)
	}

	return &c
}

// withDisplay returns a clone of t joined with the names of its linked records.
// The caller holds s.mu.
func (s *Store) withDisplay(t *transaction.Transaction) *transaction.Transaction {
	c := cloneTransaction(t)
	c.Display = transaction.Display{}

	if c.CustomerID != nil {
		if cu, ok := s.customers[*c.CustomerID]; ok {
			c.Display.CustomerName = cu.DisplayName()
		}
	}

	if c.PropertyID != nil {
		if p, ok := s.properties[*c.PropertyID]; ok {
			c.Display.PropertyNumber = p.Number
			c.Display.PropertyTitle = p.Title
		}
	}

	if c.ProjectID != nil {
		if p, ok := s.projects[*c.ProjectID]; ok {
			c.Display.ProjectName = p.Name
		}
	}

	return c
}

func byDateThenNumber(a, b *transaction.Transaction) int {
	return cmp.Or(a.Date.Compare(b.Date), cmp.Compare(a.Number, b.Number))
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, apperrors.NotFound("transaction", id)
	}

	return s.withDisplay(t), nil
}

func matches(t *transaction.Transaction, f transaction.ListFilter) bool {
	if f.Category != nil && t.Category != *f.Category {
		return false
	}

	if f.Type != nil && t.Type != *f.Type {
		return false
	}

	if f.PropertyID != nil && (t.PropertyID == nil || *t.PropertyID != *f.PropertyID) {
		return false
	}

	if f.CustomerID != nil && (t.CustomerID == nil || *t.CustomerID != *f.CustomerID) {
		return false
	}

	if f.StartDate != nil && t.Date.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && t.Date.After(*f.EndDate) {
		return false
	}

	return true
}

func (s *Store) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []*transaction.Transaction

	for _, t := range s.transactions {
		if matches(t, filter) {
			txs = append(txs, s.withDisplay(t))
		}
	}

	slices.SortFunc(txs, byDateThenNumber)

	return txs, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[t.ID]; !ok {
		return apperrors.NotFound("transaction", t.ID)
	}

	t.UpdatedAt = new(s.stamp())
	s.transactions[t.ID] = cloneTransaction(t)

	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return apperrors.NotFound("transaction", id)
	}

	delete(s.transactions, id)

	return nil
}

// unitOfWork stages rental, property and transaction writes until Commit.
type unitOfWork struct {
	s    *Store
	done bool

	rentals      map[uuid.UUID]*rental.Rental
	properties   map[uuid.UUID]*property.Property
	transactions []*transaction.Transaction
}

// Begin takes the store's write lock. It is released by Commit or Rollback,
// whichever comes first.
func (s *Store) Begin(ctx context.Context) (transaction.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()

	return &unitOfWork{
		s:          s,
		rentals:    make(map[uuid.UUID]*rental.Rental),
		properties: make(map[uuid.UUID]*property.Property),
	}, nil
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return nil
	}

	u.done = true
	defer u.s.mu.Unlock()

	maps.Copy(u.s.rentals, u.rentals)
	maps.Copy(u.s.properties, u.properties)

	for _, t := range u.transactions {
		u.s.transactions[t.ID] = t
	}

	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}

	u.done = true
	u.s.mu.Unlock()

	return nil
}

func (u *unitOfWork) GetRental(_ context.Context, id uuid.UUID) (*rental.Rental, error) {
	if r, ok := u.rentals[id]; ok {
		return r.Clone(), nil
	}

	r, ok := u.s.rentals[id]
	if !ok {
		return nil, apperrors.NotFound("rental", id)
	}

	return r.Clone(), nil
}

func (u *unitOfWork) UpdateRental(_ context.Context, r *rental.Rental) error {
	if _, ok := u.s.rentals[r.ID]; !ok {
		return apperrors.NotFound("rental", r.ID)
	}

	u.rentals[r.ID] = r.Clone()

	return nil
}

func (u *unitOfWork) GetProperty(_ context.Context, id uuid.UUID) (*property.Property, error) {
	if p, ok := u.properties[id]; ok {
		return p.Clone(), nil
	}

	p, ok := u.s.properties[id]
	if !ok {
		return nil, apperrors.NotFound("property", id)
	}

	return p.Clone(), nil
}

func (u *unitOfWork) UpdateProperty(_ context.Context, p *property.Property) error {
	if _, ok := u.s.properties[p.ID]; !ok {
		return apperrors.NotFound("property", p.ID)
	}

	u.properties[p.ID] = p.Clone()

	return nil
}

func isSalePaymentFor(t *transaction.Transaction, propertyID uuid.UUID) bool {
	return t.Type == transaction.TypeSalePayment && t.PropertyID != nil && *t.PropertyID == propertyID
}

func (u *unitOfWork) CountSalePayments(_ context.Context, propertyID uuid.UUID) (int, error) {
	n := 0

	for _, t := range u.s.transactions {
		if isSalePaymentFor(t, propertyID) {
			n++
		}
	}

	for _, t := range u.transactions {
		if isSalePaymentFor(t, propertyID) {
			n++
		}
	}

	return n, nil
}

func (u *unitOfWork) TransactionNumbers(_ context.Context) ([]string, error) {
	out := numbers(u.s.transactions, func(t *transaction.Transaction) string { return t.Number })
	for _, t := range u.transactions {
		out = append(out, t.Number)
	}

	return out, nil
}

func (u *unitOfWork) GetCustomer(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	return u.s.getCustomer(id)
}

func (u *unitOfWork) FindDuplicates(_ context.Context, params []transaction.RecordParams) ([]*transaction.Transaction, error) {
	type lookupKey struct {
		Date           string
		Amount         string
		Category       transaction.Category
		RawDescription string
	}

	keySet := make(map[lookupKey]struct{}, len(params))
	for _, p := range params {
		keySet[lookupKey{p.Date.Format("2006-01-02"), p.Amount.String(), p.Category, p.RawDescription}] = struct{}{}
	}

	var duplicates []*transaction.Transaction

	for _, t := range u.s.transactions {
		k := lookupKey{t.Date.Format("2006-01-02"), t.Amount.String(), t.Category, t.RawDescription}
		if _, found := keySet[k]; found {
			duplicates = append(duplicates, u.s.withDisplay(t))
		}
	}

	slices.SortFunc(duplicates, byDateThenNumber)

	return duplicates, nil
}

func (u *unitOfWork) CreateTransactions(_ context.Context, txs []*transaction.Transaction) error {
	now := u.s.stamp()

	for _, t := range txs {
		t.ID = uuid.New()
		t.CreatedAt = now
		t.UpdatedAt = new(now)
		u.transactions = append(u.transactions, cloneTransaction(t))
	}

	return nil
}
