package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
	"github.com/sh44ni/telalalbedaya-sub000/internal/settlement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/validation"
)

// UnknownPayer labels income whose customer could not be resolved.
const UnknownPayer = "Unknown"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	// Begin opens a unit of work that holds the ledger lock until Commit or Rollback.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork groups numbering, settlement and inserts so they commit together.
type UnitOfWork interface {
	settlement.Store

	TransactionNumbers(ctx context.Context) ([]string, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
	FindDuplicates(ctx context.Context, params []RecordParams) ([]*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo   Repository
	engine *settlement.Engine
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now for defaults such as the transaction date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, engine *settlement.Engine, opts ...Option) *Service {
	s := &Service{repo: repo, engine: engine, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RecordParams is the input of Record. Zero values are replaced by defaults.
type RecordParams struct {
	Category       Category        `json:"category" validate:"oneof=income expense"`
	Type           Type            `json:"type" validate:"oneof=rent_payment sale_payment deposit deposit_refund other_income land_purchase maintenance legal_fees commission utilities taxes insurance other_expense"`
	Amount         decimal.Decimal `json:"amount" validate:"gt=0"`
	Payer          string          `json:"payer"`
	Payee          string          `json:"payee"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod" validate:"oneof=cash card bank_transfer cheque"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	RawDescription string          `json:"-"`
	Reference      string          `json:"reference"`
	ProjectID      *uuid.UUID      `json:"projectId"`
	PropertyID     *uuid.UUID      `json:"propertyId"`
	CustomerID     *uuid.UUID      `json:"customerId"`
	RentalID       *uuid.UUID      `json:"rentalId"`
	IsSale         bool            `json:"isSale"`
	SaleDetails    *SaleDetails    `json:"saleDetails"`
}

type ListFilter struct {
	Category   *Category
	Type       *Type
	PropertyID *uuid.UUID
	CustomerID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

func (s *Service) applyDefaults(p *RecordParams) {
	if p.Category == "" {
		p.Category = CategoryIncome
	}

	if p.Type == "" {
		p.Type = TypeRentPayment
	}

	if p.PaymentMethod == "" {
		p.PaymentMethod = MethodCash
	}

	if p.Date.IsZero() {
		p.Date = s.now()
	}

	p.Date = calendar.Day(p.Date)
	p.IsSale = p.IsSale || p.Type == TypeSalePayment
}

// Record validates, numbers and persists a transaction together with the
// rent or sale settlement it triggers. A settlement whose rental or property
// no longer exists is skipped and logged; the transaction is still saved.
func (s *Service) Record(ctx context.Context, params RecordParams) (*Transaction, error) {
	s.applyDefaults(&params)

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback()

	tx := newTransaction(params)

	numbers, err := uow.TransactionNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transaction numbers: %w", err)
	}

	tx.Number = sequence.Next(numbers, sequence.Transaction, sequence.Width)

	if tx.Category == CategoryIncome && tx.Payer == "" {
		tx.Payer = s.resolvePayer(ctx, uow, tx.CustomerID)
	}

	if err := s.settle(ctx, uow, tx); err != nil {
		return nil, err
	}

	if err := uow.CreateTransactions(ctx, []*Transaction{tx}); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return tx, nil
}

func (s *Service) resolvePayer(ctx context.Context, uow UnitOfWork, customerID *uuid.UUID) string {
	if customerID == nil {
		return UnknownPayer
	}

	c, err := uow.GetCustomer(ctx, *customerID)
	if err != nil {
		slog.Warn("failed to resolve payer", "customer_id", *customerID, "error", err)
		return UnknownPayer
	}

	return c.DisplayName()
}

// settle runs sale settlement before rent settlement, matching the order in
// which a payment can affect both ledgers.
func (s *Service) settle(ctx context.Context, uow UnitOfWork, tx *Transaction) error {
	if tx.Type == TypeSalePayment && tx.SaleDetails != nil && tx.PropertyID != nil {
		p, err := s.engine.SettleSale(ctx, uow, settlement.SalePayment{
			PropertyID: *tx.PropertyID,
			CustomerID: tx.CustomerID,
			Date:       tx.Date,
			Amount:     tx.Amount,
			TotalPrice: tx.SaleDetails.TotalPrice,
		})

		switch {
		case errors.Is(err, settlement.ErrSkipped):
			slog.Warn("sale settlement skipped", "transaction", tx.Number, "property_id", *tx.PropertyID, "error", err)
		case err != nil:
			return fmt.Errorf("settle sale: %w", err)
		default:
			tx.SaleDetails.PaidAmount = p.SaleInfo.PaidAmount
			tx.SaleDetails.RemainingAmount = p.SaleInfo.RemainingAmount
		}
	}

	if tx.Type == TypeRentPayment && tx.RentalID != nil {
		_, err := s.engine.SettleRent(ctx, uow, settlement.RentPayment{
			RentalID: *tx.RentalID,
			Amount:   tx.Amount,
		})

		switch {
		case errors.Is(err, settlement.ErrSkipped):
			slog.Warn("rent settlement skipped", "transaction", tx.Number, "rental_id", *tx.RentalID, "error", err)
		case err != nil:
			return fmt.Errorf("settle rent: %w", err)
		}
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// UpdateParams holds the fields of a partial edit. Nil fields are unchanged.
type UpdateParams struct {
	Category      *Category        `json:"category"`
	Type          *Type            `json:"type"`
	Amount        *decimal.Decimal `json:"amount"`
	Payer         *string          `json:"payer"`
	Payee         *string          `json:"payee"`
	PaymentMethod *PaymentMethod   `json:"paymentMethod"`
	Date          *time.Time       `json:"date"`
	Description   *string          `json:"description"`
	Reference     *string          `json:"reference"`
	ProjectID     *uuid.UUID       `json:"projectId"`
	PropertyID    *uuid.UUID       `json:"propertyId"`
	CustomerID    *uuid.UUID       `json:"customerId"`
	RentalID      *uuid.UUID       `json:"rentalId"`
}

// Update edits a recorded transaction. Settlement is not re-run: the rental
// and property ledgers keep the effect of the original payment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	params.apply(tx)

	if err := validation.Struct(tx.Params()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	return tx, nil
}

func (p UpdateParams) apply(tx *Transaction) {
	if p.Category != nil {
		tx.Category = *p.Category
	}

	if p.Type != nil {
		tx.Type = *p.Type
	}

	if p.Amount != nil {
		tx.Amount = *p.Amount
	}

	if p.Payer != nil {
		tx.Payer = *p.Payer
	}

	if p.Payee != nil {
		tx.Payee = *p.Payee
	}

	if p.PaymentMethod != nil {
		tx.PaymentMethod = *p.PaymentMethod
	}

	if p.Date != nil {
		tx.Date = calendar.Day(*p.Date)
	}

	if p.Description != nil {
		tx.Description = *p.Description
	}

	if p.Reference != nil {
		tx.Reference = *p.Reference
	}

	if p.ProjectID != nil {
		tx.ProjectID = p.ProjectID
	}

	if p.PropertyID != nil {
		tx.PropertyID = p.PropertyID
	}

	if p.CustomerID != nil {
		tx.CustomerID = p.CustomerID
	}

	if p.RentalID != nil {
		tx.RentalID = p.RentalID
	}
}

// Delete removes a transaction. Derived rental and property state is left as is.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

type ImportResult struct {
	Imported  []*Transaction
	New       []RecordParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming RecordParams
	Existing *Transaction
}

type dupKey struct {
	Date           string
	Amount         string
	Category       Category
	RawDescription string
}

func keyOf(date time.Time, amount decimal.Decimal, category Category, raw string) dupKey {
	return dupKey{
		Date:           date.Format(time.DateOnly),
		Amount:         amount.String(),
		Category:       category,
		RawDescription: raw,
	}
}

// ImportBatch stores historical transactions unless any of them already
// exists, in which case nothing is written and the conflicts are returned
// for review. Imported rows never trigger settlement.
func (s *Service) ImportBatch(ctx context.Context, params []RecordParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	params, err := s.prepareBatch(params)
	if err != nil {
		return nil, err
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer uow.Rollback()

	duplicates, err := uow.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Category, d.RawDescription)] = d
	}

	var newParams []RecordParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.Category, p.RawDescription)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs, err := s.insertBatch(ctx, uow, newParams)
	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch stores reviewed import rows without duplicate checks.
func (s *Service) CreateBatch(ctx context.Context, params []RecordParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	params, err := s.prepareBatch(params)
	if err != nil {
		return nil, err
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer uow.Rollback()

	return s.insertBatch(ctx, uow, params)
}

// prepareBatch returns a defaulted copy of params, failing on the first invalid row.
func (s *Service) prepareBatch(params []RecordParams) ([]RecordParams, error) {
	prepared := slices.Clone(params)

	for i := range prepared {
		s.applyDefaults(&prepared[i])

		if err := validation.Struct(prepared[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return prepared, nil
}

func (s *Service) insertBatch(ctx context.Context, uow UnitOfWork, params []RecordParams) ([]*Transaction, error) {
	numbers, err := uow.TransactionNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transaction numbers: %w", err)
	}

	txs := make([]*Transaction, len(params))
	for i, p := range params {
		tx := newTransaction(p)
		tx.Number = sequence.Next(numbers, sequence.Transaction, sequence.Width)
		numbers = append(numbers, tx.Number)

		if tx.Category == CategoryIncome && tx.Payer == "" {
			tx.Payer = s.resolvePayer(ctx, uow, tx.CustomerID)
		}

		txs[i] = tx
	}

	if err := uow.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func newTransaction(p RecordParams) *Transaction {
	tx := &Transaction{
		Category:       p.Category,
		Type:           p.Type,
		Amount:         p.Amount,
		Payer:          p.Payer,
		Payee:          p.Payee,
		PaymentMethod:  p.PaymentMethod,
		Date:           p.Date,
		Description:    p.Description,
		RawDescription: p.RawDescription,
		Reference:      p.Reference,
		ProjectID:      p.ProjectID,
		PropertyID:     p.PropertyID,
		CustomerID:     p.CustomerID,
		RentalID:       p.RentalID,
		IsSale:         p.IsSale,
	}

	if p.SaleDetails != nil {
		tx.SaleDetails = new(*p.SaleDetails)
	}

	return tx
}

// Params rebuilds the input that would record t again.
func (t *Transaction) Params() RecordParams {
	return RecordParams{
		Category:       t.Category,
		Type:           t.Type,
		Amount:         t.Amount,
		Payer:          t.Payer,
		Payee:          t.Payee,
		PaymentMethod:  t.PaymentMethod,
		Date:           t.Date,
		Description:    t.Description,
		RawDescription: t.RawDescription,
		Reference:      t.Reference,
		ProjectID:      t.ProjectID,
		PropertyID:     t.PropertyID,
		CustomerID:     t.CustomerID,
		RentalID:       t.RentalID,
		IsSale:         t.IsSale,
		SaleDetails:    t.SaleDetails,
	}
}
