package matching_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	matchingHandler "github.com/sh44ni/telalalbedaya-sub000/internal/http/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
)

func newRouter(repo matching.Repository) http.Handler {
	r := chi.NewRouter()
	r.Route("/matching", matchingHandler.NewHandler(matching.NewService(repo)).Routes)

	return r
}

func TestHandler_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	customerID := uuid.New()

	repo.EXPECT().FindMatch(gomock.Any(), "TRF FROM AISHA").Return(&customerID, nil)
	repo.EXPECT().FindMatch(gomock.Any(), "CASH").Return(nil, nil)

	router := newRouter(repo)

	tests := []struct {
		name       string
		raw        string
		wantStatus int
		want       any
	}{
		{name: "Match", raw: "TRF FROM AISHA", wantStatus: http.StatusOK, want: customerID.String()},
		{name: "NoMatch", raw: "CASH", wantStatus: http.StatusOK, want: nil},
		{name: "Missing", raw: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
				"/matching/suggest?raw_description="+url.QueryEscape(tt.raw), nil))
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["customerId"])
		})
	}
}

func TestHandler_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	customerID := uuid.New()

	repo.EXPECT().CreateMapping(gomock.Any(), "AISHA", customerID).Return(nil)

	router := newRouter(repo)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "Created", body: `{"rawPattern":"  AISHA ","customerId":"` + customerID.String() + `"}`, wantStatus: http.StatusCreated},
		{name: "BlankPattern", body: `{"rawPattern":" ","customerId":"` + customerID.String() + `"}`, wantStatus: http.StatusBadRequest},
		{name: "MissingCustomer", body: `{"rawPattern":"AISHA"}`, wantStatus: http.StatusBadRequest},
		{name: "Malformed", body: `{`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/matching", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
