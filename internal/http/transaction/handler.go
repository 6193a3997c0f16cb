package transaction

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
	"github.com/sh44ni/telalalbedaya-sub000/internal/receipt"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

type Handler struct {
	svc      *transaction.Service
	receipts *receipt.Renderer
}

func NewHandler(svc *transaction.Service, receipts *receipt.Renderer) *Handler {
	return &Handler{svc: svc, receipts: receipts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/receipt", h.receipt)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// recordRequest takes dates as YYYY-MM-DD; the embedded params carry the rest.
type recordRequest struct {
	transaction.RecordParams
	Date string `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := req.RecordParams

	date, err := respond.Day("date", req.Date)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	params.Date = date

	tx, err := h.svc.Record(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func parseFilter(r *http.Request) (transaction.ListFilter, error) {
	q := r.URL.Query()

	var (
		filter transaction.ListFilter
		err    error
	)

	if s := q.Get("category"); s != "" {
		c, err := transaction.ParseCategory(s)
		if err != nil {
			return filter, err
		}

		filter.Category = &c
	}

	if s := q.Get("type"); s != "" {
		t, err := transaction.ParseType(s)
		if err != nil {
			return filter, err
		}

		filter.Type = &t
	}

	if filter.PropertyID, err = respond.QueryID(q, "property_id"); err != nil {
		return filter, err
	}

	if filter.CustomerID, err = respond.QueryID(q, "customer_id"); err != nil {
		return filter, err
	}

	if filter.StartDate, err = respond.QueryDay(q, "start_date"); err != nil {
		return filter, err
	}

	if filter.EndDate, err = respond.QueryDay(q, "end_date"); err != nil {
		return filter, err
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.receipts.Render(&buf, tx); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", receipt.Filename(tx)))

	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write receipt", "transaction", tx.Number, "error", err)
	}
}

// updateRequest mirrors transaction.UpdateParams with a YYYY-MM-DD date.
type updateRequest struct {
	transaction.UpdateParams
	Date *string `json:"date"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := req.UpdateParams
	params.Date = nil

	if req.Date != nil {
		date, err := respond.Day("date", *req.Date)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.Date = &date
	}

	tx, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
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

