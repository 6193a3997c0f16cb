package validation_test

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/validation"
)

type lease struct {
	TenantID uuid.UUID       `json:"tenantId" validate:"uuid_set"`
	Rent     decimal.Decimal `json:"rent" validate:"gt=0"`
	Deposit  decimal.Decimal `json:"deposit" validate:"gte=0"`
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end" validate:"gtfield=Start"`
	Label    string          `json:"label"`
}

func init() {
	validation.RegisterMessage("label_required", "label is required when the deposit is zero")
	validation.RegisterStruct(func(sl validator.StructLevel) {
		l := sl.Current().Interface().(lease)
		if l.Deposit.IsZero() && l.Label == "" {
			sl.ReportError(l.Label, "label", "Label", "label_required", "")
		}
	}, lease{})
}

func TestStruct_ListsEveryViolation(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := validation.Struct(lease{
		Rent:    decimal.Zero,
		Deposit: decimal.NewFromInt(-1),
		Start:   start,
		End:     start,
	})
	require.Error(t, err)

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.True(t, ve.Has("tenantId", "uuid_set"))
	assert.True(t, ve.Has("rent", "gt"))
	assert.True(t, ve.Has("deposit", "gte"))
	assert.True(t, ve.Has("end", "gtfield"))
	assert.Len(t, ve.Violations, 4)
}

func TestStruct_StructLevelRule(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := validation.Struct(lease{
		TenantID: uuid.New(),
		Rent:     decimal.NewFromInt(300),
		Start:    start,
		End:      start.AddDate(1, 0, 0),
	})

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Violations, 1)
	assert.Equal(t, "label", ve.Violations[0].Field)
	assert.Equal(t, "label is required when the deposit is zero", ve.Violations[0].Message)
}

func TestStruct_Valid(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := validation.Struct(lease{
		TenantID: uuid.New(),
		Rent:     decimal.NewFromInt(300),
		Deposit:  decimal.NewFromInt(600),
		Start:    start,
		End:      start.AddDate(1, 0, 0),
	})
	assert.NoError(t, err)
}
