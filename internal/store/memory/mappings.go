package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type mapping struct {
	pattern    string
	customerID uuid.UUID
	createdAt  time.Time
}

// FindMatch picks the longest pattern contained in rawDescription, ignoring
// case, and the newest one among equally long patterns.
func (s *Store) FindMatch(_ context.Context, rawDescription string) (*uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw := strings.ToLower(rawDescription)

	var best *mapping

	for i := range s.mappings {
		m := &s.mappings[i]
		if !strings.Contains(raw, strings.ToLower(m.pattern)) {
			continue
		}

		if best == nil || len(m.pattern) > len(best.pattern) ||
			(len(m.pattern) == len(best.pattern) && !m.createdAt.Before(best.createdAt)) {
			best = m
		}
	}

	if best == nil {
		return nil, nil
	}

	return new(best.customerID), nil
}

func (s *Store) CreateMapping(_ context.Context, rawPattern string, customerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mappings = append(s.mappings, mapping{pattern: rawPattern, customerID: customerID, createdAt: s.stamp()})

	return nil
}
