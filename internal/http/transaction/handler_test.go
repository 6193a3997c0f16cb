package transaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	txHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/transaction"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/settlement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store/memory"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

type env struct {
	router     http.Handler
	projectID  uuid.UUID
	propertyID uuid.UUID
	customerID uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctx := context.Background()
	now := func() time.Time { return time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC) }
	store := memory.New(memory.WithClock(now))

	prj, err := project.NewService(store).Create(ctx, project.CreateParams{Name: "Al Mouj Towers"})
	require.NoError(t, err)

	prp, err := property.NewService(store).Create(ctx, property.CreateParams{
		ProjectID: &prj.ID,
		Title:     "Tower A, 12th floor",
		Type:      property.TypeApartment,
		Price:     decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	cus, err := customer.NewService(store).Create(ctx, customer.CreateParams{Name: "Aisha Al Balushi"})
	require.NoError(t, err)

	svc := transaction.NewService(store, settlement.NewEngine(settlement.WithClock(now)), transaction.WithClock(now))
	h := txHandler.NewHandler(svc, receipt.NewRenderer("Telal Albedaya"))

	r := chi.NewRouter()
	r.Route("/transactions", h.Routes)

	return &env{router: r, projectID: prj.ID, propertyID: prp.ID, customerID: cus.ID}
}

func (e *env) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

func (e *env) record(t *testing.T) map[string]any {
	t.Helper()

	body := `{"amount": "500", "date": "2024-02-01", "paymentMethod": "cheque",
		"projectId": "` + e.projectID.String() + `",
		"propertyId": "` + e.propertyID.String() + `",
		"customerId": "` + e.customerID.String() + `"}`

	rec := e.do(http.MethodPost, "/transactions", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	return got
}

func TestHandler_Create(t *testing.T) {
	e := newEnv(t)

	got := e.record(t)

	assert.Equal(t, "TPL-0001", got["number"])
	assert.Equal(t, "income", got["category"])
	assert.Equal(t, "rent_payment", got["type"])
	assert.Equal(t, "500", got["amount"])
	assert.Equal(t, "2024-02-01", got["date"])
	assert.Equal(t, "Aisha Al Balushi", got["payer"])
}

func TestHandler_Create_Invalid(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name:       "MissingLinks",
			body:       `{"amount": "10"}`,
			wantFields: []string{"customerId", "propertyId", "projectId"},
		},
		{
			name:       "ExpenseWithoutPayee",
			body:       `{"category": "expense", "type": "maintenance", "amount": "-5"}`,
			wantFields: []string{"amount", "payee", "propertyId", "projectId"},
		},
		{
			name:       "BadDate",
			body:       `{"amount": "10", "date": "01/02/2024"}`,
			wantFields: []string{"date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(http.MethodPost, "/transactions", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Error      string `json:"error"`
				Violations []struct {
					Field string `json:"field"`
				} `json:"violations"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)

			var fields []string
			for _, v := range body.Violations {
				fields = append(fields, v.Field)
			}

			for _, f := range tt.wantFields {
				assert.Contains(t, fields, f)
			}
		})
	}

	rec := e.do(http.MethodPost, "/transactions", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetListUpdateDelete(t *testing.T) {
	e := newEnv(t)
	created := e.record(t)
	id := created["id"].(string)

	rec := e.do(http.MethodGet, "/transactions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "Al Mouj Towers", fetched["projectName"])
	assert.Equal(t, "Tower A, 12th floor", fetched["propertyTitle"])

	rec = e.do(http.MethodGet, "/transactions?category=income&start_date=2024-02-01&property_id="+e.propertyID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = e.do(http.MethodGet, "/transactions?end_date=2024-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)

	rec = e.do(http.MethodPatch, "/transactions/"+id, `{"description": "February rent", "date": "2024-02-02"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "February rent", updated["description"])
	assert.Equal(t, "2024-02-02", updated["date"])

	rec = e.do(http.MethodDelete, "/transactions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = e.do(http.MethodGet, "/transactions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Receipt(t *testing.T) {
	e := newEnv(t)
	created := e.record(t)

	rec := e.do(http.MethodGet, "/transactions/"+created["id"].(string)+"/receipt", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "TPL-0001.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestHandler_BadRequests(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"InvalidID", http.MethodGet, "/transactions/not-a-uuid", http.StatusBadRequest},
		{"UnknownID", http.MethodGet, "/transactions/" + uuid.NewString(), http.StatusNotFound},
		{"UnknownCategory", http.MethodGet, "/transactions?category=transfer", http.StatusBadRequest},
		{"UnknownType", http.MethodGet, "/transactions?type=bribe", http.StatusBadRequest},
		{"BadPropertyFilter", http.MethodGet, "/transactions?property_id=12", http.StatusBadRequest},
		{"BadStartDate", http.MethodGet, "/transactions?start_date=yesterday", http.StatusBadRequest},
		{"ReceiptOfUnknown", http.MethodGet, "/transactions/" + uuid.NewString() + "/receipt", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(tt.method, tt.target, "")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
