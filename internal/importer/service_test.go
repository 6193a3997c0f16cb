package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sh44ni/telalalbedaya-sub000/internal/importer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const statementCSV = `Date,Description,Amount
2024-02-01,TRF FROM AISHA AL BALUSHI,500.000
2024-02-02,CASH DEPOSIT 0091,250.000
2024-02-03,GULF PLUMBING LLC,-120.500
`

func TestService_Import_Statement(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	customerID := uuid.New()
	projectID := uuid.New()
	propertyID := uuid.New()

	repo.EXPECT().FindMatch(gomock.Any(), "TRF FROM AISHA AL BALUSHI").Return(&customerID, nil)
	repo.EXPECT().FindMatch(gomock.Any(), "CASH DEPOSIT 0091").Return(nil, nil)

	svc := importer.NewService(matching.NewService(repo))

	batch, err := svc.Import(context.Background(), importer.FormatStatement, strings.NewReader(statementCSV),
		importer.Target{ProjectID: &projectID, PropertyID: &propertyID})
	require.NoError(t, err)

	require.Len(t, batch.Ready, 2)
	require.Len(t, batch.Unmatched, 1)

	income := batch.Ready[0]
	require.NotNil(t, income.CustomerID)
	assert.Equal(t, customerID, *income.CustomerID)
	assert.Equal(t, projectID, *income.ProjectID)
	assert.Equal(t, propertyID, *income.PropertyID)

	expense := batch.Ready[1]
	assert.Equal(t, transaction.CategoryExpense, expense.Category)
	assert.Equal(t, "GULF PLUMBING LLC", expense.Payee)
	assert.Nil(t, expense.CustomerID)

	assert.Equal(t, "CASH DEPOSIT 0091", batch.Unmatched[0].RawDescription)
	assert.Equal(t, propertyID, *batch.Unmatched[0].PropertyID)
}

func TestService_Import_LegacyMatchesPayerLabel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	customerID := uuid.New()
	ownProperty := uuid.New()
	targetProperty := uuid.New()

	repo.EXPECT().FindMatch(gomock.Any(), "Aisha Al Balushi").Return(&customerID, nil)
	repo.EXPECT().FindMatch(gomock.Any(), "RCP-0002").Return(nil, errors.New("connection reset"))

	doc := `{"receipts":[
		{"number":"RCP-0001","amount":500,"receivedFrom":"Aisha Al Balushi","date":"2023-11-01","propertyId":"` + ownProperty.String() + `"},
		{"number":"RCP-0002","amount":300,"date":"2023-11-02"}
	]}`

	svc := importer.NewService(matching.NewService(repo))

	batch, err := svc.Import(context.Background(), importer.FormatLegacy, strings.NewReader(doc),
		importer.Target{PropertyID: &targetProperty})
	require.NoError(t, err)

	require.Len(t, batch.Ready, 1)
	assert.Equal(t, customerID, *batch.Ready[0].CustomerID)
	assert.Equal(t, ownProperty, *batch.Ready[0].PropertyID, "rows keep their own links")

	require.Len(t, batch.Unmatched, 1)
	assert.Equal(t, targetProperty, *batch.Unmatched[0].PropertyID)
}

func TestService_Import_Errors(t *testing.T) {
	svc := importer.NewService(matching.NewService(matching.NewMockRepository(gomock.NewController(t))))

	_, err := svc.Import(context.Background(), "ofx", strings.NewReader(""), importer.Target{})
	assert.ErrorContains(t, err, "unknown import format: ofx")

	_, err = svc.Import(context.Background(), importer.FormatStatement, strings.NewReader("a,b\n1,2\n"), importer.Target{})
	assert.ErrorContains(t, err, "no matching statement format")
}
