// Package memory is an in-process record store. It backs the console, tests
// and single-user deployments, and keeps no data across restarts.
package memory

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/customer"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/property"
	"github.com/sh44ni/telalalbedaya-sub000/internal/rental"
	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

// Store keeps every collection behind a single lock. A unit of work holds the
// write lock from Begin until Commit or Rollback.
type Store struct {
	mu sync.RWMutex

	projects     map[uuid.UUID]*project.Project
	customers    map[uuid.UUID]*customer.Customer
	properties   map[uuid.UUID]*property.Property
	rentals      map[uuid.UUID]*rental.Rental
	transactions map[uuid.UUID]*transaction.Transaction
	mappings     []mapping

	now func() time.Time
}

type Option func(*Store)

// WithClock overrides time.Now for CreatedAt and UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		projects:     make(map[uuid.UUID]*project.Project),
		customers:    make(map[uuid.UUID]*customer.Customer),
		properties:   make(map[uuid.UUID]*property.Property),
		rentals:      make(map[uuid.UUID]*rental.Rental),
		transactions: make(map[uuid.UUID]*transaction.Transaction),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

func numbers[T any](m map[uuid.UUID]T, number func(T) string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, number(v))
	}

	return out
}

// sortedByNumber returns clones of the values in m ordered by sequence number.
func sortedByNumber[T any](m map[uuid.UUID]T, number func(T) string, clone func(T) T, keep func(T) bool) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep != nil && !keep(v) {
			continue
		}

		out = append(out, clone(v))
	}

	slices.SortFunc(out, func(a, b T) int {
		return strings.Compare(number(a), number(b))
	})

	return out
}
