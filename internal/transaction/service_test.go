package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/settlement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

var fixedNow = time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

func newService(repo transaction.Repository) *transaction.Service {
	return newServiceAt(repo, fixedNow)
}

func newServiceAt(repo transaction.Repository, now time.Time) *transaction.Service {
	clock := func() time.Time { return now }

	return transaction.NewService(repo,
		settlement.NewEngine(settlement.WithClock(clock)),
		transaction.WithClock(clock),
	)
}

func ids() (project, prop, cust uuid.UUID) {
	return uuid.New(), uuid.New(), uuid.New()
}

func TestService_Record_Validation(t *testing.T) {
	projectID, propertyID, customerID := ids()

	tests := []struct {
		name   string
		params transaction.RecordParams
		want   [][2]string
	}{
		{
			name:   "IncomeMissingEverything",
			params: transaction.RecordParams{},
			want: [][2]string{
				{"amount", "gt"},
				{"customerId", "required_for_income"},
				{"propertyId", "required"},
				{"projectId", "required"},
			},
		},
		{
			name: "ExpenseMissingPayee",
			params: transaction.RecordParams{
				Category:   transaction.CategoryExpense,
				Type:       transaction.TypeMaintenance,
				Amount:     decimal.NewFromInt(120),
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				Payee:      "   ",
			},
			want: [][2]string{{"payee", "required_for_expense"}},
		},
		{
			name: "NegativeAmount",
			params: transaction.RecordParams{
				Amount:     decimal.NewFromInt(-5),
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				CustomerID: &customerID,
			},
			want: [][2]string{{"amount", "gt"}},
		},
		{
			name: "UnknownType",
			params: transaction.RecordParams{
				Type:       "gift",
				Amount:     decimal.NewFromInt(10),
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				CustomerID: &customerID,
			},
			want: [][2]string{{"type", "oneof"}},
		},
		{
			name: "SaleDetailsWithoutTotal",
			params: transaction.RecordParams{
				Type:        transaction.TypeSalePayment,
				Amount:      decimal.NewFromInt(10),
				ProjectID:   &projectID,
				PropertyID:  &propertyID,
				CustomerID:  &customerID,
				SaleDetails: &transaction.SaleDetails{},
			},
			want: [][2]string{{"totalPrice", "gt"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No repository call is expected: validation runs before any write.
			repo := transaction.NewMockRepository(ctrl)

			got, err := newService(repo).Record(context.Background(), tt.params)
			assert.Nil(t, got)
			require.ErrorIs(t, err, apperrors.ErrValidation)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Violations, len(tt.want))

			for _, w := range tt.want {
				assert.True(t, verr.Has(w[0], w[1]), "missing violation %s/%s in %v", w[0], w[1], verr.Violations)
			}
		})
	}
}

func TestService_Record(t *testing.T) {
	projectID, propertyID, customerID := ids()
	rentalID := uuid.New()

	type testCase struct {
		name      string
		params    transaction.RecordParams
		setupMock func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork)
		check     func(t *testing.T, tx *transaction.Transaction)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "DefaultsAndPayerResolution",
			params: transaction.RecordParams{
				Amount:     decimal.NewFromInt(500),
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				CustomerID: &customerID,
			},
			setupMock: func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork) {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				uow.EXPECT().TransactionNumbers(gomock.Any()).Return([]string{"TPL-0001", "TPL-0002", "TPL-0004"}, nil)
				uow.EXPECT().GetCustomer(gomock.Any(), customerID).Return(&customer.Customer{Name: "Salim Al Harthy"}, nil)
				uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
				uow.EXPECT().Commit().Return(nil)
				uow.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, "TPL-0005", tx.Number)
				assert.Equal(t, transaction.CategoryIncome, tx.Category)
				assert.Equal(t, transaction.TypeRentPayment, tx.Type)
				assert.Equal(t, transaction.MethodCash, tx.PaymentMethod)
				assert.Equal(t, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC), tx.Date)
				assert.Equal(t, "Salim Al Harthy", tx.Payer)
				assert.False(t, tx.IsSale)
			},
		},
		{
			name: "UnresolvedCustomerIsUnknown",
			params: transaction.RecordParams{
				Amount:     decimal.NewFromInt(500),
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				CustomerID: &customerID,
			},
			setupMock: func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork) {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				uow.EXPECT().TransactionNumbers(gomock.Any()).Return(nil, nil)
				uow.EXPECT().GetCustomer(gomock.Any(), customerID).Return(nil, apperrors.NotFound("customer", customerID))
				uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
				uow.EXPECT().Commit().Return(nil)
				uow.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, "TPL-0001", tx.Number)
				assert.Equal(t, transaction.UnknownPayer, tx.Payer)
			},
		},
		{
			name: "RentPaymentSettlesRental",
			params: transaction.RecordParams{
				Amount:     decimal.NewFromInt(650),
				Payer:      "Tenant",
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				CustomerID: &customerID,
				RentalID:   &rentalID,
			},
			setupMock: func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork) {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				uow.EXPECT().TransactionNumbers(gomock.Any()).Return(nil, nil)
				gomock.InOrder(
					uow.EXPECT().GetRental(gomock.Any(), rentalID).Return(&rental.Rental{
						ID:          rentalID,
						MonthlyRent: decimal.NewFromInt(300),
						PaidUntil:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					}, nil),
					uow.EXPECT().
						UpdateRental(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, r *rental.Rental) error {
							assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), r.PaidUntil)
							assert.Equal(t, rental.StatusPaid, r.PaymentStatus)
							return nil
						}),
					uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil),
					uow.EXPECT().Commit().Return(nil),
				)
				uow.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, "Tenant", tx.Payer)
			},
		},
		{
			name: "SalePaymentSettlesProperty",
			params: transaction.RecordParams{
				Type:        transaction.TypeSalePayment,
				Amount:      decimal.NewFromInt(20000),
				Payer:       "Buyer",
				ProjectID:   &projectID,
				PropertyID:  &propertyID,
				CustomerID:  &customerID,
				SaleDetails: &transaction.SaleDetails{TotalPrice: decimal.NewFromInt(50000)},
			},
			setupMock: func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork) {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				uow.EXPECT().TransactionNumbers(gomock.Any()).Return(nil, nil)
				uow.EXPECT().GetProperty(gomock.Any(), propertyID).Return(&property.Property{
					ID:     propertyID,
					Status: property.StatusAvailable,
				}, nil)
				uow.EXPECT().CountSalePayments(gomock.Any(), propertyID).Return(0, nil)
				uow.EXPECT().UpdateProperty(gomock.Any(), gomock.Any()).Return(nil)
				uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
				uow.EXPECT().Commit().Return(nil)
				uow.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.True(t, tx.IsSale)
				require.NotNil(t, tx.SaleDetails)
				assert.True(t, tx.SaleDetails.PaidAmount.Equal(decimal.NewFromInt(20000)))
				assert.True(t, tx.SaleDetails.RemainingAmount.Equal(decimal.NewFromInt(30000)))
			},
		},
		{
			name: "DanglingRentalStillRecorded",
			params: transaction.RecordParams{
				Amount:     decimal.NewFromInt(500),
				Payer:      "Tenant",
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				CustomerID: &customerID,
				RentalID:   &rentalID,
			},
			setupMock: func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork) {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				uow.EXPECT().TransactionNumbers(gomock.Any()).Return(nil, nil)
				uow.EXPECT().GetRental(gomock.Any(), rentalID).Return(nil, apperrors.NotFound("rental", rentalID))
				uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
				uow.EXPECT().Commit().Return(nil)
				uow.EXPECT().Rollback().Return(nil)
			},
			check: func(t *testing.T, tx *transaction.Transaction) {
				assert.Equal(t, "TPL-0001", tx.Number)
			},
		},
		{
			name: "SettlementFailureRollsBack",
			params: transaction.RecordParams{
				Amount:     decimal.NewFromInt(500),
				Payer:      "Tenant",
				ProjectID:  &projectID,
				PropertyID: &propertyID,
				CustomerID: &customerID,
				RentalID:   &rentalID,
			},
			setupMock: func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork) {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				uow.EXPECT().TransactionNumbers(gomock.Any()).Return(nil, nil)
				uow.EXPECT().GetRental(gomock.Any(), rentalID).Return(nil, errors.New("connection reset"))
				uow.EXPECT().Rollback().Return(nil)
			},
			wantErr: true,
		},
		{
			name: "CommitFailure",
			params: transaction.RecordParams{
				Category:   transaction.CategoryExpense,
				Type:       transaction.TypeUtilities,
				Amount:     decimal.NewFromInt(80),
				Payee:      "Water Authority",
				ProjectID:  &projectID,
				PropertyID: &propertyID,
			},
			setupMock: func(repo *transaction.MockRepository, uow *transaction.MockUnitOfWork) {
				repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
				uow.EXPECT().TransactionNumbers(gomock.Any()).Return(nil, nil)
				uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
				uow.EXPECT().Commit().Return(errors.New("db error"))
				uow.EXPECT().Rollback().Return(nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			uow := transaction.NewMockUnitOfWork(ctrl)
			tt.setupMock(repo, uow)

			got, err := newService(repo).Record(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_List(t *testing.T) {
	income := transaction.CategoryIncome

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	filter := transaction.ListFilter{Category: &income}

	repo.EXPECT().
		ListTransactions(gomock.Any(), filter).
		Return([]*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := newService(repo).List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestService_Update(t *testing.T) {
	projectID, propertyID, customerID := ids()
	id := uuid.New()

	stored := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:            id,
			Number:        "TPL-0003",
			Category:      transaction.CategoryIncome,
			Type:          transaction.TypeRentPayment,
			Amount:        decimal.NewFromInt(500),
			PaymentMethod: transaction.MethodCash,
			ProjectID:     &projectID,
			PropertyID:    &propertyID,
			CustomerID:    &customerID,
		}
	}

	t.Run("AmountChangeDoesNotResettle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		got, err := newService(repo).Update(context.Background(), id, transaction.UpdateParams{
			Amount: new(decimal.NewFromInt(900)),
		})
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(900)))
		assert.Equal(t, "TPL-0003", got.Number)
	})

	t.Run("SwitchToExpenseRequiresPayee", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(stored(), nil)

		_, err := newService(repo).Update(context.Background(), id, transaction.UpdateParams{
			Category: new(transaction.CategoryExpense),
		})

		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("payee", "required_for_expense"))
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, apperrors.NotFound("transaction", id))

		_, err := newService(repo).Update(context.Background(), id, transaction.UpdateParams{})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().DeleteTransaction(gomock.Any(), id).Return(nil)

	require.NoError(t, newService(repo).Delete(context.Background(), id))
}

func importRow(amount int64, raw string, date time.Time, projectID, propertyID uuid.UUID) transaction.RecordParams {
	return transaction.RecordParams{
		Category:       transaction.CategoryExpense,
		Type:           transaction.TypeMaintenance,
		Amount:         decimal.NewFromInt(amount),
		Payee:          raw,
		PaymentMethod:  transaction.MethodBankTransfer,
		Description:    raw,
		RawDescription: raw,
		Date:           date,
		ProjectID:      &projectID,
		PropertyID:     &propertyID,
	}
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	projectID, propertyID, _ := ids()
	repo := transaction.NewMockRepository(ctrl)
	uow := transaction.NewMockUnitOfWork(ctrl)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.RecordParams{importRow(1000, "PLUMBER LLC", date, projectID, propertyID)}

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
	uow.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	uow.EXPECT().TransactionNumbers(gomock.Any()).Return([]string{"TPL-0009"}, nil)
	uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	uow.EXPECT().Commit().Return(nil)
	uow.EXPECT().Rollback().Return(nil)

	result, err := newService(repo).ImportBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "TPL-0010", result.Imported[0].Number)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	projectID, propertyID, _ := ids()
	repo := transaction.NewMockRepository(ctrl)
	uow := transaction.NewMockUnitOfWork(ctrl)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.RecordParams{
		importRow(1000, "PLUMBER LLC", date, projectID, propertyID),
		importRow(2000, "ELECTRICIAN", date, projectID, propertyID),
	}

	existing := &transaction.Transaction{
		ID:             uuid.New(),
		Category:       transaction.CategoryExpense,
		Amount:         decimal.RequireFromString("1000.00"),
		RawDescription: "PLUMBER LLC",
		Date:           date,
	}

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
	uow.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*transaction.Transaction{existing}, nil)
	uow.EXPECT().Rollback().Return(nil)

	result, err := newService(repo).ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)

	result, err := newService(repo).ImportBatch(context.Background(), []transaction.RecordParams{})
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_InvalidRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	projectID, propertyID, _ := ids()
	repo := transaction.NewMockRepository(ctrl)

	row := importRow(0, "ZERO", fixedNow, projectID, propertyID)

	_, err := newService(repo).ImportBatch(context.Background(), []transaction.RecordParams{row})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "row 1")
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	projectID, propertyID, _ := ids()
	repo := transaction.NewMockRepository(ctrl)
	uow := transaction.NewMockUnitOfWork(ctrl)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []transaction.RecordParams{
		importRow(1000, "PLUMBER LLC", date, projectID, propertyID),
		importRow(1000, "PLUMBER LLC", date, projectID, propertyID),
	}

	repo.EXPECT().Begin(gomock.Any()).Return(uow, nil)
	uow.EXPECT().TransactionNumbers(gomock.Any()).Return([]string{"TPL-0001"}, nil)
	uow.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(2)).Return(nil)
	uow.EXPECT().Commit().Return(nil)
	uow.EXPECT().Rollback().Return(nil)

	txs, err := newService(repo).CreateBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "TPL-0002", txs[0].Number)
	assert.Equal(t, "TPL-0003", txs[1].Number)
	assert.Equal(t, transaction.TypeMaintenance, txs[0].Type)
}
