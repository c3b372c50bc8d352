package sap

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates req and converts the first failure into an InputValidationError.
func (c *Core) check(req any) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	first := fieldErrs[0]
	value, _ := first.Value().(string)
	return &InputValidationError{
		Field:  first.Field(),
		Value:  value,
		Detail: ruleMessage(first),
	}
}

func ruleMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "value is required"
	case "number":
		return "must contain digits only"
	case "len":
		return "must be exactly " + e.Param() + " digits"
	default:
		return "invalid value"
	}
}

// amountPattern accepts plain amounts of an SAP CURR(15,2) field: up to 13
// integer digits and at most 2 decimals. Exponents are rejected.
var amountPattern = regexp.MustCompile(`^-?\d{1,13}(?:\.\d{1,2})?$`)

func parseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if !amountPattern.MatchString(value) {
		return decimal.Zero, &InputValidationError{Field: "amount", Value: raw, Detail: "must be a decimal number with at most 13 digits and 2 decimals"}
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &InputValidationError{Field: "amount", Value: raw, Detail: "must be a decimal number"}
	}
	if !amount.IsPositive() {
		return decimal.Zero, &InputValidationError{Field: "amount", Value: raw, Detail: "must be greater than zero"}
	}
	return amount, nil
}
