package property

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
)

type Handler struct {
	svc *property.Service
}

func NewHandler(svc *property.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type saleInfoResponse struct {
	BuyerID         *uuid.UUID                 `json:"buyerId,omitempty"`
	SaleDate        string                     `json:"saleDate"`
	TotalPrice      decimal.Decimal            `json:"totalPrice"`
	PaidAmount      decimal.Decimal            `json:"paidAmount"`
	RemainingAmount decimal.Decimal            `json:"remainingAmount"`
	PaymentStatus   property.SalePaymentStatus `json:"paymentStatus"`
}

type propertyResponse struct {
	ID          uuid.UUID         `json:"id"`
	Number      string            `json:"number"`
	ProjectID   *uuid.UUID        `json:"projectId,omitempty"`
	Title       string            `json:"title"`
	Type        property.Type     `json:"type"`
	Status      property.Status   `json:"status"`
	Price       decimal.Decimal   `json:"price"`
	RentalPrice *decimal.Decimal  `json:"rentalPrice,omitempty"`
	Area        decimal.Decimal   `json:"area"`
	Bedrooms    *int              `json:"bedrooms,omitempty"`
	Bathrooms   *int              `json:"bathrooms,omitempty"`
	Location    string            `json:"location"`
	Address     string            `json:"address"`
	Description string            `json:"description"`
	Features    []string          `json:"features"`
	Images      []string          `json:"images"`
	SaleInfo    *saleInfoResponse `json:"saleInfo,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

func toResponse(p *property.Property) propertyResponse {
	resp := propertyResponse{
		ID:          p.ID,
		Number:      p.Number,
		ProjectID:   p.ProjectID,
		Title:       p.Title,
		Type:        p.Type,
		Status:      p.Status,
		Price:       p.Price,
		RentalPrice: p.RentalPrice,
		Area:        p.Area,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Location:    p.Location,
		Address:     p.Address,
		Description: p.Description,
		Features:    p.Features,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if resp.Features == nil {
		resp.Features = []string{}
	}

	if resp.Images == nil {
		resp.Images = []string{}
	}

	if si := p.SaleInfo; si != nil {
		resp.SaleInfo = &saleInfoResponse{
			BuyerID:         si.BuyerID,
			SaleDate:        si.SaleDate.Format(time.DateOnly),
			TotalPrice:      si.TotalPrice,
			PaidAmount:      si.PaidAmount,
			RemainingAmount: si.RemainingAmount,
			PaymentStatus:   si.PaymentStatus,
		}
	}

	return resp
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var params property.CreateParams
	if !respond.Decode(w, r, &params) {
		return
	}

	p, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		filter property.ListFilter
		err    error
	)

	if s := q.Get("status"); s != "" {
		st, err := property.ParseStatus(s)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		filter.Status = &st
	}

	if filter.ProjectID, err = respond.QueryID(q, "project_id"); err != nil {
		respond.Error(w, r, err)
		return
	}

	props, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]propertyResponse, len(props))
	for i, p := range props {
		resp[i] = toResponse(p)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

// update overwrites the editable fields. The sale ledger is never written here.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var params property.CreateParams
	if !respond.Decode(w, r, &params) {
		return
	}

	p.ProjectID = params.ProjectID
	p.Title = params.Title
	p.Type = params.Type
	p.Price = params.Price
	p.RentalPrice = params.RentalPrice
	p.Area = params.Area
	p.Bedrooms = params.Bedrooms
	p.Bathrooms = params.Bathrooms
	p.Location = params.Location
	p.Address = params.Address
	p.Description = params.Description
	p.Features = params.Features
	p.Images = params.Images

	if params.Status != "" {
		p.Status = params.Status
	}

	updated, err := h.svc.Update(r.Context(), p)
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
