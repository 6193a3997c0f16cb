package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestStore_FindMatch(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(tickingClock()))

	aisha, salim, newer := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, s.CreateMapping(ctx, "AISHA", aisha))
	require.NoError(t, s.CreateMapping(ctx, "trf from aisha al", salim))
	require.NoError(t, s.CreateMapping(ctx, "OMANTEL", uuid.New()))
	require.NoError(t, s.CreateMapping(ctx, "omantel", newer))

	tests := []struct {
		name string
		raw  string
		want *uuid.UUID
	}{
		{"LongestPatternWins", "TRF FROM AISHA AL BALUSHI", &salim},
		{"CaseInsensitive", "cash deposit aisha", &aisha},
		{"NewestOfEqualLength", "OMANTEL BILL 0124", &newer},
		{"NoMatch", "ATM WITHDRAWAL", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMatch(ctx, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_UnitOfWork(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := &rental.Rental{
		MonthlyRent:   decimal.NewFromInt(500),
		LeaseStart:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PaidUntil:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PaymentStatus: rental.StatusUnpaid,
	}
	require.NoError(t, s.CreateRental(ctx, r))

	stage := func(t *testing.T) transaction.UnitOfWork {
		t.Helper()

		uow, err := s.Begin(ctx)
		require.NoError(t, err)

		staged, err := uow.GetRental(ctx, r.ID)
		require.NoError(t, err)

		staged.PaidUntil = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		staged.PaymentStatus = rental.StatusPaid
		require.NoError(t, uow.UpdateRental(ctx, staged))
		require.NoError(t, uow.CreateTransactions(ctx, []*transaction.Transaction{{Number: "TPL-0001"}}))

		numbers, err := uow.TransactionNumbers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"TPL-0001"}, numbers)

		return uow
	}

	t.Run("RollbackDiscards", func(t *testing.T) {
		require.NoError(t, stage(t).Rollback())

		got, err := s.GetRental(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, rental.StatusUnpaid, got.PaymentStatus)

		txs, err := s.ListTransactions(ctx, transaction.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("CommitApplies", func(t *testing.T) {
		uow := stage(t)
		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Rollback(), "rollback after commit is a no-op")

		got, err := s.GetRental(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, rental.StatusPaid, got.PaymentStatus)
		assert.Equal(t, "2024-02-01", got.PaidUntil.Format(time.DateOnly))

		txs, err := s.ListTransactions(ctx, transaction.ListFilter{})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "TPL-0001", txs[0].Number)
	})

	t.Run("UnknownRental", func(t *testing.T) {
		uow, err := s.Begin(ctx)
		require.NoError(t, err)
		defer uow.Rollback()

		_, err = uow.GetRental(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestStore_BeginCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
