package importcsv

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
	"github.com/sh44ni/telalalbedaya-sub000/internal/importer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importStatement)
	r.Post("/legacy", h.importLegacy)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID       uuid.UUID            `json:"id"`
	Number   string               `json:"number"`
	Category transaction.Category `json:"category"`
	Type     transaction.Type     `json:"type"`
	Amount   decimal.Decimal      `json:"amount"`
	Party    string               `json:"party"`
	Date     string               `json:"date"`
}

// paramsDTO carries a parsed row to the client and back on confirm.
type paramsDTO struct {
	Category       transaction.Category      `json:"category"`
	Type           transaction.Type          `json:"type"`
	Amount         decimal.Decimal           `json:"amount"`
	Payer          string                    `json:"payer,omitempty"`
	Payee          string                    `json:"payee,omitempty"`
	PaymentMethod  transaction.PaymentMethod `json:"paymentMethod"`
	Date           string                    `json:"date"`
	Description    string                    `json:"description"`
	RawDescription string                    `json:"rawDescription"`
	Reference      string                    `json:"reference,omitempty"`
	ProjectID      *uuid.UUID                `json:"projectId,omitempty"`
	PropertyID     *uuid.UUID                `json:"propertyId,omitempty"`
	CustomerID     *uuid.UUID                `json:"customerId,omitempty"`
	RentalID       *uuid.UUID                `json:"rentalId,omitempty"`
	IsSale         bool                      `json:"isSale,omitempty"`
	SaleDetails    *transaction.SaleDetails  `json:"saleDetails,omitempty"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
	Unmatched    []paramsDTO           `json:"unmatched"`
}

type conflictDTO struct {
	Incoming paramsDTO           `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []paramsDTO   `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
	Unmatched []paramsDTO   `json:"unmatched"`
}

type confirmRequest struct {
	Params []paramsDTO `json:"params"`
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	var target importer.Target

	form := r.MultipartForm.Value
	if target.PropertyID, err = respond.QueryID(form, "property_id"); err != nil {
		respond.Error(w, r, err)
		return
	}

	if target.ProjectID, err = respond.QueryID(form, "project_id"); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.importFrom(w, r, importer.FormatStatement, file, target)
}

func (h *Handler) importLegacy(w http.ResponseWriter, r *http.Request) {
	h.importFrom(w, r, importer.FormatLegacy, http.MaxBytesReader(w, r.Body, maxUpload), importer.Target{})
}

func (h *Handler) importFrom(w http.ResponseWriter, r *http.Request, format importer.Format, body io.Reader, target importer.Target) {
	batch, err := h.importSvc.Import(r.Context(), format, body, target)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), batch.Ready)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	unmatched := toParamsList(batch.Unmatched)

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       toParamsList(result.New),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
			Unmatched: unmatched,
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	resp := toSuccessResponse(result.Imported)
	resp.Unmatched = unmatched

	respond.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := make([]transaction.RecordParams, 0, len(req.Params))
	for _, p := range req.Params {
		date, err := respond.Day("date", p.Date)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params = append(params, transaction.RecordParams{
			Category:       p.Category,
			Type:           p.Type,
			Amount:         p.Amount,
			Payer:          p.Payer,
			Payee:          p.Payee,
			PaymentMethod:  p.PaymentMethod,
			Date:           date,
			Description:    p.Description,
			RawDescription: p.RawDescription,
			Reference:      p.Reference,
			ProjectID:      p.ProjectID,
			PropertyID:     p.PropertyID,
			CustomerID:     p.CustomerID,
			RentalID:       p.RentalID,
			IsSale:         p.IsSale,
			SaleDetails:    p.SaleDetails,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toSuccessResponse(txs)
	resp.Unmatched = []paramsDTO{}

	respond.JSON(w, http.StatusCreated, resp)
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:       tx.ID,
		Number:   tx.Number,
		Category: tx.Category,
		Type:     tx.Type,
		Amount:   tx.Amount,
		Party:    tx.Party(),
		Date:     tx.Date.Format(time.DateOnly),
	}
}

func toParamsDTO(p transaction.RecordParams) paramsDTO {
	return paramsDTO{
		Category:       p.Category,
		Type:           p.Type,
		Amount:         p.Amount,
		Payer:          p.Payer,
		Payee:          p.Payee,
		PaymentMethod:  p.PaymentMethod,
		Date:           p.Date.Format(time.DateOnly),
		Description:    p.Description,
		RawDescription: p.RawDescription,
		Reference:      p.Reference,
		ProjectID:      p.ProjectID,
		PropertyID:     p.PropertyID,
		CustomerID:     p.CustomerID,
		RentalID:       p.RentalID,
		IsSale:         p.IsSale,
		SaleDetails:    p.SaleDetails,
	}
}

func toParamsList(params []transaction.RecordParams) []paramsDTO {
	out := make([]paramsDTO, 0, len(params))
	for _, p := range params {
		out = append(out, toParamsDTO(p))
	}

	return out
}
