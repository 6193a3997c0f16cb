package transaction

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sh44ni/telalalbedaya-sub000/internal/validation"
)

func init() {
	validation.RegisterMessage("required_for_income", "%s is required for income")
	validation.RegisterMessage("required_for_expense", "%s is required for expenses")
	validation.RegisterStruct(recordRules, RecordParams{})
}

// recordRules checks the references every transaction must carry. They depend
// on the category, so they cannot be expressed as field tags.
func recordRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(RecordParams)

	switch p.Category {
	case CategoryIncome:
		if p.CustomerID == nil {
			sl.ReportError(p.CustomerID, "customerId", "CustomerID", "required_for_income", "")
		}
	case CategoryExpense:
		if strings.TrimSpace(p.Payee) == "" {
			sl.ReportError(p.Payee, "payee", "Payee", "required_for_expense", "")
		}
	}

	if p.PropertyID == nil {
		sl.ReportError(p.PropertyID, "propertyId", "PropertyID", "required", "")
	}

	if p.ProjectID == nil {
		sl.ReportError(p.ProjectID, "projectId", "ProjectID", "required", "")
	}
}
