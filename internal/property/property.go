package property

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

type Type string

const (
	TypeApartment Type = "apartment"
	TypeVilla     Type = "villa"
	TypeShop      Type = "shop"
	TypeOffice    Type = "office"
	TypeLand      Type = "land"
	TypeWarehouse Type = "warehouse"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeApartment, TypeVilla, TypeShop, TypeOffice, TypeLand, TypeWarehouse:
		return t, nil
	}

	return "", apperrors.Invalid("type", "oneof", fmt.Sprintf("unknown property type %q", s))
}

// Status is the commercial state of a property.
type Status string

const (
	StatusAvailable        Status = "available"
	StatusRented           Status = "rented"
	StatusSold             Status = "sold"
	StatusUnderMaintenance Status = "under_maintenance"
)

// Statuses lists every Status in display order.
var Statuses = []Status{StatusAvailable, StatusRented, StatusSold, StatusUnderMaintenance}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusAvailable, StatusRented, StatusSold, StatusUnderMaintenance:
		return st, nil
	}

	return "", apperrors.Invalid("status", "oneof", fmt.Sprintf("unknown property status %q", s))
}

// SalePaymentStatus tracks progress of a sale ledger.
type SalePaymentStatus string

const (
	SalePartial   SalePaymentStatus = "partial"
	SaleCompleted SalePaymentStatus = "completed"
)

// SaleInfo is the running sale ledger. It exists once the first sale payment
// has been settled against the property.
type SaleInfo struct {
	BuyerID         *uuid.UUID
	SaleDate        time.Time
	TotalPrice      decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	PaymentStatus   SalePaymentStatus
}

// Property is a unit of real estate.
type Property struct {
	ID          uuid.UUID
	Number      string // PRP-0001
	ProjectID   *uuid.UUID
	Title       string
	Type        Type
	Status      Status
	Price       decimal.Decimal
	RentalPrice *decimal.Decimal
	Area        decimal.Decimal
	Bedrooms    *int
	Bathrooms   *int
	Location    string
	Address     string
	Description string
	Features    []string
	Images      []string
	SaleInfo    *SaleInfo
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Label is the short name used in listings and on receipts.
func (p *Property) Label() string {
	if p.Title == "" {
		return p.Number
	}

	return p.Number + " " + p.Title
}

// Clone returns a deep copy so that staged changes never alias stored state.
func (p *Property) Clone() *Property {
	c := *p

	if p.ProjectID != nil {
		c.ProjectID = new(*p.ProjectID)
	}

	if p.RentalPrice != nil {
		c.RentalPrice = new(*p.RentalPrice)
	}

	if p.Bedrooms != nil {
		c.Bedrooms = new(*p.Bedrooms)
	}

	if p.Bathrooms != nil {
		c.Bathrooms = new(*p.Bathrooms)
	}

	if p.UpdatedAt != nil {
		c.UpdatedAt = new(*p.UpdatedAt)
	}

	c.Features = append([]string(nil), p.Features...)
	c.Images = append([]string(nil), p.Images...)

	if p.SaleInfo != nil {
		si := *p.SaleInfo
		if p.SaleInfo.BuyerID != nil {
			si.BuyerID = new(*p.SaleInfo.BuyerID)
		}

		c.SaleInfo = &si
	}

	return &c
}
