package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sh44ni/telalalbedaya-sub000/internal/dashboard"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(category transaction.Category, amount int64, date time.Time) *transaction.Transaction {
	return &transaction.Transaction{Category: category, Amount: decimal.NewFromInt(amount), Date: date}
}

func dec(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(decimal.NewFromInt(want)), "want %d, got %s", want, got)
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 3, 14, 15, 4, 5, 0, time.UTC) // Thursday

	tests := []struct {
		period      dashboard.Period
		want        time.Time
		wantBounded bool
	}{
		{period: dashboard.PeriodAll, wantBounded: false},
		{period: dashboard.PeriodThisWeek, want: day(2024, 3, 11), wantBounded: true},
		{period: dashboard.PeriodThisMonth, want: day(2024, 3, 1), wantBounded: true},
		{period: dashboard.PeriodThisYear, want: day(2024, 1, 1), wantBounded: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got, bounded := dashboard.PeriodStart(tt.period, now)
			assert.Equal(t, tt.wantBounded, bounded)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreviousWindow(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "ThisMonthIsNotLastYear",
			start:     day(2024, 3, 1),
			now:       time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC),
			wantStart: day(2024, 2, 20),
			wantEnd:   day(2024, 2, 29),
		},
		{
			name:      "SingleDay",
			start:     day(2024, 3, 11),
			now:       day(2024, 3, 11),
			wantStart: day(2024, 3, 10),
			wantEnd:   day(2024, 3, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd := dashboard.PreviousWindow(tt.start, tt.now)
			assert.Equal(t, tt.wantStart, gotStart)
			assert.Equal(t, tt.wantEnd, gotEnd)
		})
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name string
		cur  int64
		prev int64
		want float64
	}{
		{name: "Growth", cur: 150, prev: 100, want: 50},
		{name: "Decline", cur: 50, prev: 200, want: -75},
		{name: "ZeroBaselineWithActivity", cur: 10, prev: 0, want: 100},
		{name: "ZeroBaselineNoActivity", cur: 0, prev: 0, want: 0},
		{name: "NegativeBaseline", cur: 100, prev: -100, want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dashboard.PercentChange(decimal.NewFromInt(tt.cur), decimal.NewFromInt(tt.prev))
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestService_Compute(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	txs := []*transaction.Transaction{
		tx(transaction.CategoryIncome, 1000, day(2024, 3, 2)),
		tx(transaction.CategoryExpense, 300, day(2024, 3, 5)),
		// Legacy row without a category.
		tx("", 200, day(2024, 3, 10)),
		// Previous window: Feb 20 - Feb 29.
		tx(transaction.CategoryIncome, 600, day(2024, 2, 25)),
		tx(transaction.CategoryExpense, 100, day(2024, 2, 20)),
		// Outside both windows.
		tx(transaction.CategoryIncome, 5000, day(2024, 2, 1)),
		tx(transaction.CategoryIncome, 9999, day(2024, 3, 11)),
	}

	props := []*property.Property{
		{Status: property.StatusRented},
		{Status: property.StatusRented},
		{Status: property.StatusAvailable},
		{Status: property.StatusSold},
	}

	rentals := []*rental.Rental{
		{PaymentStatus: rental.StatusPaid},
		{PaymentStatus: rental.StatusOverdue},
		{PaymentStatus: rental.StatusOverdue},
	}

	setup := func(t *testing.T) *dashboard.Service {
		ctrl := gomock.NewController(t)

		repo := dashboard.NewMockRepository(ctrl)
		repo.EXPECT().ListTransactions(gomock.Any(), transaction.ListFilter{}).Return(txs, nil)
		repo.EXPECT().ListProperties(gomock.Any(), property.ListFilter{}).Return(props, nil)
		repo.EXPECT().ListRentals(gomock.Any(), rental.ListFilter{}).Return(rentals, nil)

		return dashboard.NewService(repo, dashboard.WithClock(func() time.Time { return now }))
	}

	t.Run("ThisMonth", func(t *testing.T) {
		got, err := setup(t).Compute(context.Background(), dashboard.PeriodThisMonth)
		require.NoError(t, err)

		require.NotNil(t, got.Start)
		assert.Equal(t, day(2024, 3, 1), *got.Start)

		dec(t, 1200, got.Financial.Revenue)
		dec(t, 300, got.Financial.Expenses)
		dec(t, 900, got.Financial.NetIncome)

		require.NotNil(t, got.Financial.Previous)
		prev := got.Financial.Previous
		assert.Equal(t, day(2024, 2, 20), prev.Start)
		assert.Equal(t, day(2024, 2, 29), prev.End)
		dec(t, 600, prev.Totals.Revenue)
		dec(t, 100, prev.Totals.Expenses)
		assert.InDelta(t, 100, prev.RevenueChange, 0.001)
		assert.InDelta(t, 200, prev.ExpensesChange, 0.001)
		assert.InDelta(t, 80, prev.NetIncomeChange, 0.001)

		require.Len(t, got.ChartData, 1)
		assert.Equal(t, "2024-03", got.ChartData[0].Month)
		dec(t, 1200, got.ChartData[0].Revenue)

		assert.Equal(t, 4, got.Properties.Total)
		assert.Equal(t, 2, got.Properties.ByStatus[property.StatusRented])
		assert.Equal(t, 0, got.Properties.ByStatus[property.StatusUnderMaintenance])
		assert.InDelta(t, 0.5, got.Properties.OccupancyRate, 0.0001)

		assert.Equal(t, 3, got.Rentals.Total)
		assert.Equal(t, 2, got.Rentals.ByStatus[rental.StatusOverdue])
	})

	t.Run("AllHasNoComparison", func(t *testing.T) {
		got, err := setup(t).Compute(context.Background(), dashboard.PeriodAll)
		require.NoError(t, err)

		assert.Nil(t, got.Start)
		assert.Nil(t, got.Financial.Previous)
		dec(t, 6800, got.Financial.Revenue)
		dec(t, 400, got.Financial.Expenses)

		months := make([]string, 0, len(got.ChartData))
		for _, p := range got.ChartData {
			months = append(months, p.Month)
		}

		assert.Equal(t, []string{"2024-02", "2024-03"}, months)
		dec(t, 5600, got.ChartData[0].Revenue)
	})

	t.Run("LegacyRowIsNeverAnExpense", func(t *testing.T) {
		got, err := setup(t).Compute(context.Background(), dashboard.PeriodThisWeek)
		require.NoError(t, err)

		// Week of Monday Mar 4 to Sunday Mar 10.
		dec(t, 200, got.Financial.Revenue)
		dec(t, 300, got.Financial.Expenses)
	})
}

func TestService_Compute_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := dashboard.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	_, err := dashboard.NewService(repo).Compute(context.Background(), dashboard.PeriodAll)
	assert.Error(t, err)
}

func TestParsePeriod(t *testing.T) {
	p, err := dashboard.ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, dashboard.PeriodAll, p)

	p, err = dashboard.ParsePeriod("this_year")
	require.NoError(t, err)
	assert.Equal(t, dashboard.PeriodThisYear, p)

	_, err = dashboard.ParsePeriod("last_decade")
	assert.Error(t, err)
}
