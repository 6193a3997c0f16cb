// Package validation wraps go-playground/validator and converts its failures
// into apperrors.ValidationError so that every broken rule is reported.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
)

var (
	once     sync.Once
	validate *validator.Validate

	messagesMu sync.RWMutex
	messages   = map[string]string{
		"required": "%s is required",
		"gt":       "%s must be greater than %s",
		"gte":      "%s must be at least %s",
		"lte":      "%s must be at most %s",
		"uuid_set": "%s is required",
		"email":    "%s must be a valid email address",
		"gtfield":  "%s must be after %s",
		"oneof":    "%s must be one of [%s]",
		"notblank": "%s must not be blank",
	}
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}

			return name
		})

		// Amounts are compared as floats; only their sign matters to the rules.
		validate.RegisterCustomTypeFunc(func(v reflect.Value) any {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}

			return nil
		}, decimal.Decimal{})

		mustRegister("uuid_set", func(fl validator.FieldLevel) bool {
			id, ok := fl.Field().Interface().(uuid.UUID)
			return ok && id != uuid.Nil
		})
		mustRegister("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})

	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %q validation: %v", tag, err))
	}
}

// RegisterStruct attaches cross-field rules to the given struct types.
// Rules report failures through sl.ReportError; their tags should have a
// message registered with RegisterMessage.
func RegisterStruct(fn validator.StructLevelFunc, types ...any) {
	instance().RegisterStructValidation(fn, types...)
}

// RegisterMessage sets the human-readable message for a tag. The message may
// contain one %s verb for the field name.
func RegisterMessage(tag, message string) {
	messagesMu.Lock()
	defer messagesMu.Unlock()

	messages[tag] = message
}

// Struct validates v and returns an *apperrors.ValidationError listing every
// violation, or nil.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating %T: %w", v, err)
	}

	violations := make([]apperrors.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, apperrors.Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}

	return &apperrors.ValidationError{Violations: violations}
}

func message(fe validator.FieldError) string {
	messagesMu.RLock()
	format, ok := messages[fe.Tag()]
	messagesMu.RUnlock()

	if !ok {
		return fmt.Sprintf("%s failed the %s rule", fe.Field(), fe.Tag())
	}

	switch strings.Count(format, "%s") {
	case 0:
		return format
	case 1:
		return fmt.Sprintf(format, fe.Field())
	}

	return fmt.Sprintf(format, fe.Field(), fe.Param())
}
