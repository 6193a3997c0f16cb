package rental

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
	"github.com/sh44ni/telalalbedaya-sub000/internal/reminder"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
)

type Handler struct {
	svc       *rental.Service
	reminders *reminder.Service
}

func NewHandler(svc *rental.Service, reminders *reminder.Service) *Handler {
	return &Handler{svc: svc, reminders: reminders}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/reminder", h.remind)
}

type rentalResponse struct {
	ID            uuid.UUID            `json:"id"`
	Number        string               `json:"number"`
	PropertyID    uuid.UUID            `json:"propertyId"`
	CustomerID    uuid.UUID            `json:"customerId"`
	MonthlyRent   decimal.Decimal      `json:"monthlyRent"`
	DepositAmount decimal.Decimal      `json:"depositAmount"`
	LeaseStart    string               `json:"leaseStart"`
	LeaseEnd      string               `json:"leaseEnd"`
	DueDay        int                  `json:"dueDay"`
	PaymentStatus rental.PaymentStatus `json:"paymentStatus"`
	PaidUntil     string               `json:"paidUntil"`
	Notes         string               `json:"notes"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     *time.Time           `json:"updatedAt,omitempty"`
}

func toResponse(r *rental.Rental) rentalResponse {
	return rentalResponse{
		ID:            r.ID,
		Number:        r.Number,
		PropertyID:    r.PropertyID,
		CustomerID:    r.CustomerID,
		MonthlyRent:   r.MonthlyRent,
		DepositAmount: r.DepositAmount,
		LeaseStart:    r.LeaseStart.Format(time.DateOnly),
		LeaseEnd:      r.LeaseEnd.Format(time.DateOnly),
		DueDay:        r.DueDay,
		PaymentStatus: r.PaymentStatus,
		PaidUntil:     r.PaidThrough().Format(time.DateOnly),
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// rentalRequest takes lease dates as YYYY-MM-DD.
type rentalRequest struct {
	rental.CreateParams
	LeaseStart string `json:"leaseStart"`
	LeaseEnd   string `json:"leaseEnd"`
	PaidUntil  string `json:"paidUntil"`
}

func (req rentalRequest) params() (rental.CreateParams, error) {
	params := req.CreateParams

	var err error
	if params.LeaseStart, err = respond.Day("leaseStart", req.LeaseStart); err != nil {
		return params, err
	}

	if params.LeaseEnd, err = respond.Day("leaseEnd", req.LeaseEnd); err != nil {
		return params, err
	}

	params.PaidUntil = nil

	if req.PaidUntil != "" {
		paid, err := respond.Day("paidUntil", req.PaidUntil)
		if err != nil {
			return params, err
		}

		params.PaidUntil = &paid
	}

	return params, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rent, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(rent))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		filter rental.ListFilter
		err    error
	)

	if s := q.Get("payment_status"); s != "" {
		st, err := rental.ParsePaymentStatus(s)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		filter.PaymentStatus = &st
	}

	if filter.PropertyID, err = respond.QueryID(q, "property_id"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if filter.CustomerID, err = respond.QueryID(q, "customer_id"); err != nil {
		respond.Error(w, r, err)
		return
	}

	rentals, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]rentalResponse, len(rentals))
	for i, rent := range rentals {
		resp[i] = toResponse(rent)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	rent, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(rent))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	rent, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req rentalRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	rent.PropertyID = params.PropertyID
	rent.CustomerID = params.CustomerID
	rent.MonthlyRent = params.MonthlyRent
	rent.DepositAmount = params.DepositAmount
	rent.LeaseStart = params.LeaseStart
	rent.LeaseEnd = params.LeaseEnd
	rent.Notes = params.Notes

	if params.DueDay != 0 {
		rent.DueDay = params.DueDay
	}

	// Omitted ledger fields stay with whatever settlement last wrote.
	override := rental.LedgerOverride{PaidUntil: params.PaidUntil}
	if params.PaymentStatus != "" {
		override.PaymentStatus = &params.PaymentStatus
	}

	updated, err := h.svc.Update(r.Context(), rent, override)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reminderResponse struct {
	Sent bool `json:"sent"`
}

func (h *Handler) remind(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	sent, err := h.reminders.Send(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, reminderResponse{Sent: sent})
}
