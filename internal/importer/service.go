package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/importer/legacy"
	"github.com/sh44ni/telalalbedaya-sub000/internal/importer/statement"
	"github.com/sh44ni/telalalbedaya-sub000/internal/matching"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

type Service struct {
	importers map[Format]Importer
	matcher   *matching.Service
}

func NewService(matcher *matching.Service) *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatStatement: statement.NewParser(),
			FormatLegacy:    legacy.NewParser(),
		},
		matcher: matcher,
	}
}

// Target links rows that carry no project or property of their own.
type Target struct {
	ProjectID  *uuid.UUID
	PropertyID *uuid.UUID
}

// Batch splits parsed rows into those ready for import and income rows
// whose payer could not be matched to a customer.
type Batch struct {
	Ready     []transaction.RecordParams
	Unmatched []transaction.RecordParams
}

// Import parses r and completes each row: target links, the payee of
// expenses and the customer of income via learned payer mappings.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader, target Target) (*Batch, error) {
	importer, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown import format: %s", format)
	}

	params, err := importer.Parse(r)
	if err != nil {
		return nil, err
	}

	batch := &Batch{}

	for _, p := range params {
		if p.ProjectID == nil {
			p.ProjectID = target.ProjectID
		}

		if p.PropertyID == nil {
			p.PropertyID = target.PropertyID
		}

		if p.Category == transaction.CategoryExpense {
			if p.Payee == "" {
				p.Payee = p.Description
			}

			batch.Ready = append(batch.Ready, p)

			continue
		}

		if p.CustomerID == nil {
			p.CustomerID = s.suggest(ctx, p)
		}

		if p.CustomerID == nil {
			batch.Unmatched = append(batch.Unmatched, p)
			continue
		}

		batch.Ready = append(batch.Ready, p)
	}

	return batch, nil
}

func (s *Service) suggest(ctx context.Context, p transaction.RecordParams) *uuid.UUID {
	label := p.Payer
	if label == "" {
		label = p.RawDescription
	}

	if label == "" {
		return nil
	}

	id, err := s.matcher.Suggest(ctx, label)
	if err != nil {
		slog.Warn("failed to match payer", "label", label, "error", err)
		return nil
	}

	return id
}
