package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindUnset Kind = iota
	KindString
	KindNumber
	KindDate
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "boolean"
	default:
		return "unset"
	}
}

// Value is a single cell: unset, string, number, date or boolean.
// The zero Value is unset.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
	b    bool
}

// StringValue returns a string cell.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue returns a numeric cell.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// DateValue returns a date cell.
func DateValue(t time.Time) Value { return Value{kind: KindDate, date: t} }

// BoolValue returns a boolean cell.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// Empty is the value back-filled into rows for new columns.
var Empty = StringValue("")

func (v Value) Kind() Kind { return v.kind }

// IsUnset reports whether v holds no value at all.
func (v Value) IsUnset() bool { return v.kind == KindUnset }

// IsEmpty reports whether v is unset or the empty string.
// Zero and false are not empty.
func (v Value) IsEmpty() bool {
	return v.kind == KindUnset || (v.kind == KindString && v.str == "")
}

// Str returns the string payload. Only meaningful for KindString.
func (v Value) Str() string { return v.str }

// Float returns the numeric payload. Only meaningful for KindNumber.
func (v Value) Float() float64 { return v.num }

// Time returns the date payload. Only meaningful for KindDate.
func (v Value) Time() time.Time { return v.date }

// Bool returns the boolean payload. Only meaningful for KindBool.
func (v Value) Bool() bool { return v.b }

// String renders the value the way it is searched, sorted and exported.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindDate:
		return FormatDate(v.date)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindDate:
		return v.date.Equal(o.date)
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// GoString makes test failure output readable.
func (v Value) GoString() string {
	if v.kind == KindUnset {
		return "unset"
	}
	return fmt.Sprintf("%s(%q)", v.kind, v.String())
}

// FormatNumber renders n without exponent or trailing zeros.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FormatDate renders midnight-UTC dates as YYYY-MM-DD and anything else as RFC 3339.
func FormatDate(t time.Time) string {
	if t.Location() == time.UTC && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// MarshalJSON emits the natural JSON type. Dates become strings and unset
// becomes null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case KindDate:
		return json.Marshal(FormatDate(v.date))
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '{', '[':
		return fmt.Errorf("cell value must be a scalar, got %s", data)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid cell value %s: %w", data, err)
		}
		*v = NumberValue(n)
	}
	return nil
}
