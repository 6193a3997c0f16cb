// Package legacy reads the JSON document exported by the previous back
// office, where payments were kept as receipts and early transactions had
// no category.
package legacy

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

type document struct {
	Receipts     []row `json:"receipts"`
	Transactions []row `json:"transactions"`
}

type row struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	ReceiptNumber string          `json:"receiptNumber"`
	Category      string          `json:"category"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	ReceivedFrom  string          `json:"receivedFrom"`
	PaidTo        string          `json:"paidTo"`
	Payer         string          `json:"payer"`
	Payee         string          `json:"payee"`
	PaymentMethod string          `json:"paymentMethod"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Reference     string          `json:"reference"`
	ProjectID     string          `json:"projectId"`
	PropertyID    string          `json:"propertyId"`
	CustomerID    string          `json:"customerId"`
	RentalID      string          `json:"rentalId"`
}

var dateLayouts = []string{time.RFC3339, time.DateOnly, "02/01/2006"}

// Parser turns a legacy document into transaction params ready for import.
// Each row keeps its old number as raw description, so importing the same
// document twice reports every row as a duplicate.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.RecordParams, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode legacy document: %w", err)
	}

	params := make([]transaction.RecordParams, 0, len(doc.Receipts)+len(doc.Transactions))

	for i, r := range doc.Receipts {
		rp, err := r.params()
		if err != nil {
			return nil, fmt.Errorf("receipts[%d]: %w", i, err)
		}

		params = append(params, rp)
	}

	for i, r := range doc.Transactions {
		rp, err := r.params()
		if err != nil {
			return nil, fmt.Errorf("transactions[%d]: %w", i, err)
		}

		params = append(params, rp)
	}

	return params, nil
}

func (r row) params() (transaction.RecordParams, error) {
	rec, err := r.receipt()
	if err != nil {
		return transaction.RecordParams{}, err
	}

	tx, err := transaction.Normalize(rec)
	if err != nil {
		return transaction.RecordParams{}, err
	}

	p := tx.Params()
	p.RawDescription = rec.Number

	if p.Reference == "" {
		p.Reference = rec.Number
	}

	return p, nil
}

func (r row) receipt() (transaction.LegacyReceipt, error) {
	number := firstNonEmpty(r.Number, r.ReceiptNumber)
	if number == "" {
		return transaction.LegacyReceipt{}, fmt.Errorf("missing number")
	}

	date, err := parseDate(r.Date)
	if err != nil {
		return transaction.LegacyReceipt{}, fmt.Errorf("%s: %w", number, err)
	}

	rec := transaction.LegacyReceipt{
		Number:        number,
		Category:      r.Category,
		Type:          r.Type,
		Amount:        r.Amount,
		ReceivedFrom:  firstNonEmpty(r.ReceivedFrom, r.Payer),
		PaidTo:        firstNonEmpty(r.PaidTo, r.Payee),
		PaymentMethod: r.PaymentMethod,
		Date:          date,
		Description:   r.Description,
		Reference:     r.Reference,
	}

	refs := []struct {
		field string
		value string
		dst   **uuid.UUID
	}{
		{"projectId", r.ProjectID, &rec.ProjectID},
		{"propertyId", r.PropertyID, &rec.PropertyID},
		{"customerId", r.CustomerID, &rec.CustomerID},
		{"rentalId", r.RentalID, &rec.RentalID},
	}

	for _, ref := range refs {
		id, err := parseID(ref.value)
		if err != nil {
			return transaction.LegacyReceipt{}, fmt.Errorf("%s: %s: %w", number, ref.field, err)
		}

		*ref.dst = id
	}

	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendar.Day(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseID(s string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}

	return ""
}
