package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

type transactionResponse struct {
	ID             uuid.UUID                 `json:"id"`
	Number         string                    `json:"number"`
	Category       transaction.Category      `json:"category"`
	Type           transaction.Type          `json:"type"`
	Amount         decimal.Decimal           `json:"amount"`
	Payer          string                    `json:"payer,omitempty"`
	Payee          string                    `json:"payee,omitempty"`
	PaymentMethod  transaction.PaymentMethod `json:"paymentMethod"`
	Date           string                    `json:"date"`
	Description    string                    `json:"description"`
	RawDescription string                    `json:"rawDescription,omitempty"`
	Reference      string                    `json:"reference,omitempty"`
	ProjectID      *uuid.UUID                `json:"projectId,omitempty"`
	PropertyID     *uuid.UUID                `json:"propertyId,omitempty"`
	CustomerID     *uuid.UUID                `json:"customerId,omitempty"`
	RentalID       *uuid.UUID                `json:"rentalId,omitempty"`
	IsSale         bool                      `json:"isSale"`
	SaleDetails    *transaction.SaleDetails  `json:"saleDetails,omitempty"`
	CustomerName   string                    `json:"customerName,omitempty"`
	PropertyNumber string                    `json:"propertyNumber,omitempty"`
	PropertyTitle  string                    `json:"propertyTitle,omitempty"`
	ProjectName    string                    `json:"projectName,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      *time.Time                `json:"updatedAt,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:             tx.ID,
		Number:         tx.Number,
		Category:       tx.Category,
		Type:           tx.Type,
		Amount:         tx.Amount,
		Payer:          tx.Payer,
		Payee:          tx.Payee,
		PaymentMethod:  tx.PaymentMethod,
		Date:           tx.Date.Format(time.DateOnly),
		Description:    tx.Description,
		RawDescription: tx.RawDescription,
		Reference:      tx.Reference,
		ProjectID:      tx.ProjectID,
		PropertyID:     tx.PropertyID,
		CustomerID:     tx.CustomerID,
		RentalID:       tx.RentalID,
		IsSale:         tx.IsSale,
		SaleDetails:    tx.SaleDetails,
		CustomerName:   tx.Display.CustomerName,
		PropertyNumber: tx.Display.PropertyNumber,
		PropertyTitle:  tx.Display.PropertyTitle,
		ProjectName:    tx.Display.ProjectName,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
