package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sh44ni/telalalbedaya-sub000/internal/export"
	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.workbook)
	r.Post("/download", h.download)
}

type exportRequest struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]*transaction.Transaction, bool) {
	var req exportRequest
	if r.ContentLength != 0 && !respond.Decode(w, r, &req) {
		return nil, false
	}

	var filter transaction.ListFilter

	for _, f := range []struct {
		field string
		value string
		dst   **time.Time
	}{
		{"startDate", req.StartDate, &filter.StartDate},
		{"endDate", req.EndDate, &filter.EndDate},
	} {
		if f.value == "" {
			continue
		}

		d, err := respond.Day(f.field, f.value)
		if err != nil {
			respond.Error(w, r, err)
			return nil, false
		}

		*f.dst = &d
	}

	txs, err := h.svc.Export(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}

	return txs, true
}

func (h *Handler) workbook(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.svc.WriteWorkbook(&buf, txs); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.attach(w, xlsxContentType, fmt.Sprintf("transactions_%s.xlsx", h.now().Format("20060102")), buf.Bytes())
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	txs, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.svc.WriteBundle(&buf, txs); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.attach(w, "application/zip", fmt.Sprintf("export_%s.zip", h.now().Format("20060102")), buf.Bytes())
}

func (h *Handler) attach(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write export", "file", filename, "error", err)
	}
}
