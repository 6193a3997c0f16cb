package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sh44ni/telalalbedaya-sub000/internal/export"
	exportHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/export"
	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/settlement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store/memory"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

func setup(t *testing.T) http.Handler {
	t.Helper()

	store := memory.New()
	txs := transaction.NewService(store, settlement.NewEngine())

	for _, p := range []transaction.RecordParams{
		{
			Category:      transaction.CategoryExpense,
			Type:          transaction.TypeUtilities,
			Amount:        decimal.NewFromInt(40),
			Payee:         "Nama Electricity",
			PaymentMethod: transaction.MethodCash,
			Date:          time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			Category:      transaction.CategoryExpense,
			Type:          transaction.TypeMaintenance,
			Amount:        decimal.NewFromInt(75),
			Payee:         "Gulf Plumbing LLC",
			PaymentMethod: transaction.MethodCash,
			Date:          time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	} {
		_, err := txs.Record(context.Background(), p)
		require.NoError(t, err)
	}

	h := exportHandler.NewHandler(export.NewService(txs, receipt.NewRenderer("Telal Albedaya")))

	r := chi.NewRouter()
	r.Route("/export", h.Routes)

	return r
}

func TestHandler_Workbook(t *testing.T) {
	router := setup(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export",
		strings.NewReader(`{"startDate":"2024-03-01","endDate":"2024-03-31"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "TPL-0002", rows[1][0])

	v, err := f.GetCellValue("Transactions", "A3")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestHandler_Download(t *testing.T) {
	router := setup(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/download", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	assert.Len(t, zr.File, 4)
}

func TestHandler_BadDate(t *testing.T) {
	router := setup(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(`{"startDate":"March"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
