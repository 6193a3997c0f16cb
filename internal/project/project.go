package project

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

// Status is the delivery stage of a project.
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOnHold     Status = "on_hold"
)

// ParseStatus maps raw input onto a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold:
		return st, nil
	}

	return "", apperrors.Invalid("status", "oneof", fmt.Sprintf("unknown project status %q", s))
}

// Project groups properties developed together.
type Project struct {
	ID          uuid.UUID
	Number      string // PRJ-0001
	Name        string
	Location    string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
