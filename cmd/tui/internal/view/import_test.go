package view

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/importer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/settlement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store/memory"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const statementCSV = `Account Statement
Account Number,0123456789
Currency,OMR

Transaction Date,Value Date,Description,Reference,Debit,Credit,Balance
03/01/2024,03/01/2024,TRF FROM AISHA AL BALUSHI,FT24003,,"1,500.000","11,500.000"
04/01/2024,04/01/2024,TRF FROM SALIM AL HARTHY,FT24004,,500.000,"12,000.000"
15/01/2024,15/01/2024,GULF PLUMBING LLC,CHQ 000145,120.500,,"11,879.500"
`

type importFixture struct {
	svc        ImportServices
	projectID  uuid.UUID
	propertyID uuid.UUID
	aishaID    uuid.UUID
	salimID    uuid.UUID
	path       string
}

func newImportFixture(t *testing.T) importFixture {
	t.Helper()

	ctx := context.Background()
	store := memory.New()

	matchSvc := matching.NewService(store)
	svc := ImportServices{
		Transactions: transaction.NewService(store, settlement.NewEngine()),
		Importer:     importer.NewService(matchSvc),
		Matching:     matchSvc,
		Customers:    customer.NewService(store),
		Projects:     project.NewService(store),
		Properties:   property.NewService(store),
	}

	prj, err := svc.Projects.Create(ctx, project.CreateParams{Name: "Al Mouj Towers"})
	require.NoError(t, err)

	prp, err := svc.Properties.Create(ctx, property.CreateParams{
		ProjectID: &prj.ID,
		Title:     "Tower A, 12th floor",
		Type:      property.TypeApartment,
	})
	require.NoError(t, err)

	aisha, err := svc.Customers.Create(ctx, customer.CreateParams{Name: "Aisha Al Balushi"})
	require.NoError(t, err)

	salim, err := svc.Customers.Create(ctx, customer.CreateParams{Name: "Salim Al Harthy"})
	require.NoError(t, err)

	require.NoError(t, matchSvc.Learn(ctx, "SALIM AL HARTHY", salim.ID))

	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(statementCSV), 0o600))

	return importFixture{
		svc:        svc,
		projectID:  prj.ID,
		propertyID: prp.ID,
		aishaID:    aisha.ID,
		salimID:    salim.ID,
		path:       path,
	}
}

func update(t *testing.T, m ImportModel, msg tea.Msg) (ImportModel, tea.Cmd) {
	t.Helper()

	model, cmd := m.Update(msg)

	next, ok := model.(ImportModel)
	require.True(t, ok)

	return next, cmd
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestImportModel_SelectTarget(t *testing.T) {
	f := newImportFixture(t)
	m := NewImportModel(f.svc)

	m, cmd := update(t, m, enter)
	require.Equal(t, importStateProjectSelect, m.state)
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	require.Len(t, m.projects, 1)

	m, cmd = update(t, m, enter)
	require.Equal(t, importStatePropertySelect, m.state)
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	require.Len(t, m.properties, 1)

	m, _ = update(t, m, enter)
	assert.Equal(t, importStateFilePick, m.state)
	assert.Equal(t, importer.FormatStatement, m.selectedFormat)
	assert.Equal(t, &f.projectID, m.target.ProjectID)
	assert.Equal(t, &f.propertyID, m.target.PropertyID)
}

func TestImportModel_SelectTarget_NoProjects(t *testing.T) {
	store := memory.New()
	m := NewImportModel(ImportServices{Projects: project.NewService(store)})

	m, cmd := update(t, m, enter)
	m, _ = update(t, m, cmd())

	assert.Equal(t, importStateResult, m.state)
	assert.Error(t, m.err)
}

func (f importFixture) statementModel() ImportModel {
	m := NewImportModel(f.svc)
	m.selectedFormat = importer.FormatStatement
	m.target = importer.Target{ProjectID: &f.projectID, PropertyID: &f.propertyID}

	return m
}

func TestImportModel_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("AssignUnknownPayer", func(t *testing.T) {
		f := newImportFixture(t)
		m := f.statementModel()

		msg := m.importCmd(f.path)()
		res, ok := msg.(importResultMsg)
		require.True(t, ok)
		require.NoError(t, res.err)
		assert.Len(t, res.result.Imported, 2)
		require.Len(t, res.unmatched, 1)
		assert.Equal(t, "TRF FROM AISHA AL BALUSHI", res.unmatched[0].RawDescription)

		m, _ = update(t, m, msg)
		require.Equal(t, importStatePayers, m.state)

		m.payerInput.SetValue("unknown")
		m, cmd := update(t, m, enter)
		assert.Nil(t, cmd)
		assert.Equal(t, importStatePayers, m.state)
		assert.Contains(t, m.status, "Unknown customer number")

		m.payerInput.SetValue("cus-0001")
		m, cmd = update(t, m, enter)
		require.NotNil(t, cmd)

		m, _ = update(t, m, cmd())
		require.NoError(t, m.err)
		assert.Equal(t, importStateResult, m.state)
		assert.Equal(t, "Imported 3 transactions.", m.status)

		txs, err := f.svc.Transactions.List(ctx, transaction.ListFilter{})
		require.NoError(t, err)
		require.Len(t, txs, 3)

		byRaw := make(map[string]*transaction.Transaction)
		for _, tx := range txs {
			byRaw[tx.RawDescription] = tx
			assert.Equal(t, &f.projectID, tx.ProjectID)
			assert.Equal(t, &f.propertyID, tx.PropertyID)
		}

		assert.Equal(t, &f.aishaID, byRaw["TRF FROM AISHA AL BALUSHI"].CustomerID)
		assert.Equal(t, "Aisha Al Balushi", byRaw["TRF FROM AISHA AL BALUSHI"].Payer)
		assert.Equal(t, &f.salimID, byRaw["TRF FROM SALIM AL HARTHY"].CustomerID)
		assert.Equal(t, "GULF PLUMBING LLC", byRaw["GULF PLUMBING LLC"].Payee)

		learned, err := f.svc.Matching.Suggest(ctx, "TRF FROM AISHA AL BALUSHI")
		require.NoError(t, err)
		assert.Equal(t, &f.aishaID, learned)
	})

	t.Run("SkipUnknownPayer", func(t *testing.T) {
		f := newImportFixture(t)
		m := f.statementModel()

		m, _ = update(t, m, m.importCmd(f.path)())
		require.Equal(t, importStatePayers, m.state)

		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		require.NotNil(t, cmd)

		m, _ = update(t, m, cmd())
		assert.Equal(t, importStateResult, m.state)
		assert.Equal(t, "Imported 2 transactions. 1 payments without a customer were skipped.", m.status)

		txs, err := f.svc.Transactions.List(ctx, transaction.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("ReimportRaisesConflicts", func(t *testing.T) {
		f := newImportFixture(t)
		m := f.statementModel()

		first, ok := m.importCmd(f.path)().(importResultMsg)
		require.True(t, ok)
		require.NoError(t, first.err)

		second, ok := m.importCmd(f.path)().(importResultMsg)
		require.True(t, ok)
		require.NoError(t, second.err)
		assert.Empty(t, second.result.Imported)
		assert.Len(t, second.result.Conflicts, 2)

		m, _ = update(t, m, second)
		assert.Equal(t, importStateConflicts, m.state)
	})
}
