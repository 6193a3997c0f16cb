package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription string     `json:"rawDescription"`
	CustomerID     *uuid.UUID `json:"customerId"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		respond.BadRequest(w, "raw_description query parameter is required")
		return
	}

	customerID, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		RawDescription: rawDesc,
		CustomerID:     customerID,
	})
}

type learnRequest struct {
	RawPattern string    `json:"rawPattern"`
	CustomerID uuid.UUID `json:"customerId"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.CustomerID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
