package property_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store/memory"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := property.NewService(memory.New())

	p, err := svc.Create(ctx, property.CreateParams{
		Title:       "Sea view flat",
		Type:        property.TypeApartment,
		Price:       decimal.NewFromInt(85000),
		RentalPrice: new(decimal.NewFromInt(500)),
		Bedrooms:    new(2),
	})
	require.NoError(t, err)

	assert.Equal(t, "PRP-0001", p.Number)
	assert.Equal(t, property.StatusAvailable, p.Status)
	assert.Nil(t, p.SaleInfo)
	assert.Equal(t, "PRP-0001 Sea view flat", p.Label())
}

func TestService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params property.CreateParams
		field  string
		rule   string
	}{
		{
			name:   "MissingType",
			params: property.CreateParams{Title: "Plot 12"},
			field:  "type",
			rule:   "oneof",
		},
		{
			name:   "NegativePrice",
			params: property.CreateParams{Type: property.TypeLand, Price: decimal.NewFromInt(-1)},
			field:  "price",
			rule:   "gte",
		},
		{
			name:   "NegativeBedrooms",
			params: property.CreateParams{Type: property.TypeVilla, Bedrooms: new(-2)},
			field:  "bedrooms",
			rule:   "gte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := property.NewService(memory.New()).Create(context.Background(), tt.params)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has(tt.field, tt.rule), verr.Error())
		})
	}
}

func TestService_UpdateKeepsSaleLedger(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := property.NewService(store)

	p, err := svc.Create(ctx, property.CreateParams{Type: property.TypeVilla})
	require.NoError(t, err)

	stale := p.Clone()

	// Settle a sale the way the recorder does, through the unit of work.
	uow, err := store.Begin(ctx)
	require.NoError(t, err)

	sold := p.Clone()
	sold.Status = property.StatusSold
	sold.SaleInfo = &property.SaleInfo{
		BuyerID:         new(uuid.New()),
		SaleDate:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		TotalPrice:      decimal.NewFromInt(50000),
		PaidAmount:      decimal.NewFromInt(20000),
		RemainingAmount: decimal.NewFromInt(30000),
		PaymentStatus:   property.SalePartial,
	}
	require.NoError(t, uow.UpdateProperty(ctx, sold))
	require.NoError(t, uow.Commit())

	stale.Title = "Corner villa"
	stale.Status = property.StatusAvailable

	got, err := svc.Update(ctx, stale)
	require.NoError(t, err)
	assert.Equal(t, "Corner villa", got.Title)
	assert.Equal(t, property.StatusSold, got.Status)
	require.NotNil(t, got.SaleInfo)
	assert.True(t, got.SaleInfo.RemainingAmount.Equal(decimal.NewFromInt(30000)))

	// A staff edit cannot attach a ledger either.
	other, err := svc.Create(ctx, property.CreateParams{Type: property.TypeShop})
	require.NoError(t, err)

	other.SaleInfo = sold.SaleInfo
	got, err = svc.Update(ctx, other)
	require.NoError(t, err)
	assert.Nil(t, got.SaleInfo)
	assert.Equal(t, property.StatusAvailable, got.Status)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	svc := property.NewService(memory.New())
	projectID := uuid.New()

	_, err := svc.Create(ctx, property.CreateParams{Type: property.TypeShop, ProjectID: &projectID, Status: property.StatusRented})
	require.NoError(t, err)

	_, err = svc.Create(ctx, property.CreateParams{Type: property.TypeOffice})
	require.NoError(t, err)

	rented, err := svc.List(ctx, property.ListFilter{Status: new(property.StatusRented)})
	require.NoError(t, err)
	assert.Len(t, rented, 1)

	inProject, err := svc.List(ctx, property.ListFilter{ProjectID: &projectID})
	require.NoError(t, err)
	require.Len(t, inProject, 1)
	assert.Equal(t, property.TypeShop, inProject[0].Type)

	all, err := svc.List(ctx, property.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), apperrors.ErrNotFound)
}
