package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/sequence"
)

// saleInfoRow is the JSONB layout of properties.sale_info.
type saleInfoRow struct {
	BuyerID         *uuid.UUID                 `json:"buyerId,omitempty"`
	SaleDate        string                     `json:"saleDate"`
	TotalPrice      decimal.Decimal            `json:"totalPrice"`
	PaidAmount      decimal.Decimal            `json:"paidAmount"`
	RemainingAmount decimal.Decimal            `json:"remainingAmount"`
	PaymentStatus   property.SalePaymentStatus `json:"paymentStatus"`
}

func toSaleInfoRow(si *property.SaleInfo) *saleInfoRow {
	if si == nil {
		return nil
	}

	return &saleInfoRow{
		BuyerID:         si.BuyerID,
		SaleDate:        si.SaleDate.Format(time.DateOnly),
		TotalPrice:      si.TotalPrice,
		PaidAmount:      si.PaidAmount,
		RemainingAmount: si.RemainingAmount,
		PaymentStatus:   si.PaymentStatus,
	}
}

func (r *saleInfoRow) saleInfo() (*property.SaleInfo, error) {
	date, err := time.Parse(time.DateOnly, r.SaleDate)
	if err != nil {
		return nil, fmt.Errorf("parsing sale date: %w", err)
	}

	return &property.SaleInfo{
		BuyerID:         r.BuyerID,
		SaleDate:        date,
		TotalPrice:      r.TotalPrice,
		PaidAmount:      r.PaidAmount,
		RemainingAmount: r.RemainingAmount,
		PaymentStatus:   r.PaymentStatus,
	}, nil
}

const selectPropertyColumns = `
	id, number, project_id, title, type, status, price, rental_price, area, bedrooms, bathrooms,
	location, address, description, features, images, sale_info, created_at, updated_at
`

func scanProperty(s scanner) (*property.Property, error) {
	var p property.Property

	var typ, status string

	var rentalPrice decimal.NullDecimal

	var features, images, saleInfo []byte

	if err := s.Scan(
		&p.ID, &p.Number, &p.ProjectID, &p.Title, &typ, &status, &p.Price, &rentalPrice, &p.Area,
		&p.Bedrooms, &p.Bathrooms, &p.Location, &p.Address, &p.Description,
		&features, &images, &saleInfo, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Type = property.Type(typ)
	p.Status = property.Status(status)

	if rentalPrice.Valid {
		p.RentalPrice = &rentalPrice.Decimal
	}

	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, fmt.Errorf("decoding features: %w", err)
	}

	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}

	row, err := fromJSONB[saleInfoRow](saleInfo)
	if err != nil {
		return nil, fmt.Errorf("decoding sale info: %w", err)
	}

	if row != nil {
		if p.SaleInfo, err = row.saleInfo(); err != nil {
			return nil, err
		}
	}

	return &p, nil
}

// propertyArgs returns the writable columns in selectPropertyColumns order,
// starting at project_id.
func propertyArgs(p *property.Property) ([]any, error) {
	features, err := json.Marshal(nonNil(p.Features))
	if err != nil {
		return nil, fmt.Errorf("encoding features: %w", err)
	}

	images, err := json.Marshal(nonNil(p.Images))
	if err != nil {
		return nil, fmt.Errorf("encoding images: %w", err)
	}

	saleInfo, err := jsonb(toSaleInfoRow(p.SaleInfo))
	if err != nil {
		return nil, fmt.Errorf("encoding sale info: %w", err)
	}

	var rentalPrice decimal.NullDecimal
	if p.RentalPrice != nil {
		rentalPrice = decimal.NewNullDecimal(*p.RentalPrice)
	}

	return []any{
		p.ProjectID, p.Title, p.Type, p.Status, p.Price, rentalPrice, p.Area, p.Bedrooms, p.Bathrooms,
		p.Location, p.Address, p.Description, string(features), string(images), saleInfo,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

func (s *Store) CreateProperty(ctx context.Context, p *property.Property) error {
	args, err := propertyArgs(p)
	if err != nil {
		return err
	}

	return s.numbered(ctx, "properties", sequence.Property, func(tx *sql.Tx, number string) error {
		query := `
			INSERT INTO properties (
				number, project_id, title, type, status, price, rental_price, area, bedrooms, bathrooms,
				location, address, description, features, images, sale_info, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
			RETURNING id, number, created_at
		`

		err := tx.QueryRowContext(ctx, query, append([]any{number}, args...)...).Scan(&p.ID, &p.Number, &p.CreatedAt)
		if err != nil {
			return apperrors.Storage(fmt.Errorf("creating property: %w", err))
		}

		return nil
	})
}

func (s *Store) GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	return getProperty(ctx, s.db, id, false)
}

func getProperty(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*property.Property, error) {
	query := `SELECT ` + selectPropertyColumns + ` FROM properties WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanProperty(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(err, "property", id)
	}

	return p, nil
}

func (s *Store) ListProperties(ctx context.Context, filter property.ListFilter) ([]*property.Property, error) {
	query := `SELECT ` + selectPropertyColumns + ` FROM properties WHERE TRUE`

	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}

	query += " ORDER BY number"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage(fmt.Errorf("listing properties: %w", err))
	}
	defer rows.Close()

	var props []*property.Property

	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Errorf("scanning property: %w", err))
		}

		props = append(props, p)
	}

	return props, rows.Err()
}

// UpdateProperty stores staff edits. sale_info is left to settlement, and the
// status of a property with a sale ledger stays sold.
func (s *Store) UpdateProperty(ctx context.Context, p *property.Property) error {
	args, err := propertyArgs(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE properties
		SET project_id = $1, title = $2, type = $3,
			status = CASE WHEN sale_info IS NULL THEN $4::text ELSE '` + string(property.StatusSold) + `' END,
			price = $5, rental_price = $6, area = $7, bedrooms = $8, bathrooms = $9, location = $10,
			address = $11, description = $12, features = $13, images = $14, updated_at = NOW()
		WHERE id = $15
	`

	res, err := s.db.ExecContext(ctx, query, append(args[:14], p.ID)...)

	return expectOne(res, err, "property", p.ID)
}

// settleProperty writes the whole row, sale ledger included. It runs inside
// the locked unit of work only.
func settleProperty(ctx context.Context, q querier, p *property.Property) error {
	args, err := propertyArgs(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE properties
		SET project_id = $1, title = $2, type = $3, status = $4, price = $5, rental_price = $6, area = $7,
			bedrooms = $8, bathrooms = $9, location = $10, address = $11, description = $12,
			features = $13, images = $14, sale_info = $15, updated_at = NOW()
		WHERE id = $16
	`

	res, err := q.ExecContext(ctx, query, append(args, p.ID)...)

	return expectOne(res, err, "property", p.ID)
}

func (s *Store) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)

	return expectOne(res, err, "property", id)
}
