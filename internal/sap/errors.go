package sap

import (
	"errors"
	"fmt"
)

// InputValidationError reports a missing or malformed transaction field.
type InputValidationError struct {
	// Field is the input name (customer, doc_num, amount, ...).
	Field string
	// Value is the rejected value.
	Value string
	// Detail describes the violated rule.
	Detail string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", fieldLabel(e.Field), e.Value, e.Detail)
}

// IsValidation reports whether err is an InputValidationError.
func IsValidation(err error) bool {
	var target *InputValidationError
	return errors.As(err, &target)
}

func fieldLabel(field string) string {
	switch field {
	case "customer", "customer_id":
		return "customer ID"
	case "doc_num":
		return "document number"
	case "company_code":
		return "company code"
	default:
		return field
	}
}
