package core

// validation.go checks candidate cell values against their column before
// they are committed, and coerces them into typed values afterwards.
//
// Validation never fails loudly: every problem is returned as a
// ValidationError value so the caller can show all of them at once.

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError is a single per-cell problem.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidateCellValue checks v against col. It returns ok=true when the value
// is acceptable; otherwise the returned error carries the message.
func ValidateCellValue(v Value, col Column) (ValidationError, bool) {
	fail := func(msg string) (ValidationError, bool) {
		return ValidationError{Field: col.Field, Value: v.String(), Message: msg}, false
	}

	if v.IsEmpty() {
		if col.Required {
			return fail(col.HeaderName + " is required")
		}
		return ValidationError{}, true
	}

	switch col.Type {
	case TypeNumber:
		if !isNumberLike(v) {
			return fail("Must be a number")
		}
	case TypeDate:
		if !isDateLike(v) {
			return fail("Must be a valid date")
		}
	case TypeBoolean:
		if !isBoolLike(v) {
			return fail("Must be true or false")
		}
	case TypeString:
		if col.Field == "email" && !IsValidEmail(v.String()) {
			return fail("Must be a valid email")
		}
	}
	return ValidationError{}, true
}

// ValidateRow validates values against every visible column and returns
// all problems in column order. Missing keys are treated as empty.
func ValidateRow(values map[string]Value, columns []Column) []ValidationError {
	var errs []ValidationError
	for _, col := range columns {
		if !col.Visible {
			continue
		}
		if verr, ok := ValidateCellValue(values[col.Field], col); !ok {
			errs = append(errs, verr)
		}
	}
	return errs
}

// ConvertToType coerces a validated value into typ. Empty input yields the
// empty string for every type.
func ConvertToType(v Value, typ ColumnType) Value {
	if v.IsEmpty() {
		return Empty
	}

	switch typ {
	case TypeNumber:
		switch v.Kind() {
		case KindNumber:
			return v
		case KindBool:
			if v.Bool() {
				return NumberValue(1)
			}
			return NumberValue(0)
		}
		if n, ok := ParseNumber(v.String()); ok {
			return NumberValue(n)
		}
	case TypeBoolean:
		switch v.Kind() {
		case KindBool:
			return v
		case KindNumber:
			return BoolValue(v.Float() != 0)
		}
		if b, ok := ParseBool(v.String()); ok {
			return BoolValue(b)
		}
		return BoolValue(true)
	case TypeDate:
		if v.Kind() == KindDate {
			return v
		}
		if t, ok := ParseDate(v.String()); ok {
			return DateValue(t)
		}
	default:
		return StringValue(v.String())
	}
	// Unparseable input for a typed column keeps its string form.
	return StringValue(v.String())
}

func isNumberLike(v Value) bool {
	switch v.Kind() {
	case KindNumber:
		return !math.IsNaN(v.Float()) && !math.IsInf(v.Float(), 0)
	case KindBool:
		return true
	}
	_, ok := ParseNumber(v.String())
	return ok
}

func isDateLike(v Value) bool {
	if v.Kind() == KindDate {
		return !v.Time().IsZero()
	}
	_, ok := ParseDate(v.String())
	return ok
}

func isBoolLike(v Value) bool {
	if v.Kind() == KindBool {
		return true
	}
	_, ok := ParseBool(strings.TrimSpace(v.String()))
	return ok
}
