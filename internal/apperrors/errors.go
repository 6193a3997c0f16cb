package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that a requested record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates that input failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStorage indicates a failure in the underlying record store.
	ErrStorage = errors.New("storage error")
)

// Violation is a single broken input rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every violated rule, not just the first one.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}

	return "validation error: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether a violation for the given field and rule is present.
func (e *ValidationError) Has(field, rule string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}

	return false
}

// Invalid builds a ValidationError with a single violation.
func Invalid(field, rule, message string) *ValidationError {
	return &ValidationError{Violations: []Violation{{Field: field, Rule: rule, Message: message}}}
}

// NotFoundError names the entity and id that could not be resolved.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(entity string, id fmt.Stringer) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// Storage marks err as a persistence failure. Nil stays nil.
func Storage(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrStorage) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrStorage, err)
}
