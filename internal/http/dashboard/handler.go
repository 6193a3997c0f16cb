package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/dashboard"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type totalsResponse struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

type comparisonResponse struct {
	Start           string         `json:"start"`
	End             string         `json:"end"`
	Totals          totalsResponse `json:"totals"`
	RevenueChange   float64        `json:"revenueChange"`
	ExpensesChange  float64        `json:"expensesChange"`
	NetIncomeChange float64        `json:"netIncomeChange"`
}

type monthResponse struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

type dashboardResponse struct {
	Period     dashboard.Period    `json:"period"`
	Start      *string             `json:"start,omitempty"`
	End        string              `json:"end"`
	Financial  totalsResponse      `json:"financial"`
	Previous   *comparisonResponse `json:"previous,omitempty"`
	ChartData  []monthResponse     `json:"chartData"`
	Properties map[string]any      `json:"properties"`
	Rentals    map[string]any      `json:"rentals"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	period, err := dashboard.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	d, err := h.svc.Compute(r.Context(), period)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

func toTotals(t dashboard.Totals) totalsResponse {
	return totalsResponse{Revenue: t.Revenue, Expenses: t.Expenses, NetIncome: t.NetIncome}
}

func toResponse(d *dashboard.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Period:    d.Period,
		End:       d.End.Format(time.DateOnly),
		Financial: toTotals(d.Financial.Totals),
		ChartData: make([]monthResponse, len(d.ChartData)),
		Properties: map[string]any{
			"total":         d.Properties.Total,
			"byStatus":      d.Properties.ByStatus,
			"occupancyRate": d.Properties.OccupancyRate,
		},
		Rentals: map[string]any{
			"total":    d.Rentals.Total,
			"byStatus": d.Rentals.ByStatus,
		},
	}

	if d.Start != nil {
		resp.Start = new(d.Start.Format(time.DateOnly))
	}

	if p := d.Financial.Previous; p != nil {
		resp.Previous = &comparisonResponse{
			Start:           p.Start.Format(time.DateOnly),
			End:             p.End.Format(time.DateOnly),
			Totals:          toTotals(p.Totals),
			RevenueChange:   p.RevenueChange,
			ExpensesChange:  p.ExpensesChange,
			NetIncomeChange: p.NetIncomeChange,
		}
	}

	for i, m := range d.ChartData {
		resp.ChartData[i] = monthResponse{Month: m.Month, Revenue: m.Revenue, Expenses: m.Expenses}
	}

	return resp
}
