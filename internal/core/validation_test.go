package core

import (
	"testing"
	"time"
)

func TestValidateCellValue(t *testing.T) {
	name := Column{Field: "name", HeaderName: "Name", Type: TypeString, Required: true, Visible: true}
	email := Column{Field: "email", HeaderName: "Email", Type: TypeString, Visible: true}
	age := Column{Field: "age", HeaderName: "Age", Type: TypeNumber, Visible: true}
	joined := Column{Field: "joined", HeaderName: "Joined", Type: TypeDate, Visible: true}
	active := Column{Field: "active", HeaderName: "Active", Type: TypeBoolean, Visible: true}

	tests := []struct {
		name    string
		value   Value
		col     Column
		wantOK  bool
		wantMsg string
	}{
		{"required empty string", StringValue(""), name, false, "Name is required"},
		{"required unset", Value{}, name, false, "Name is required"},
		{"required present", StringValue("Ada"), name, true, ""},
		{"required whitespace is present", StringValue(" "), name, true, ""},
		{"optional empty passes", StringValue(""), age, true, ""},

		{"number string", StringValue("42"), age, true, ""},
		{"number native", NumberValue(3.5), age, true, ""},
		{"zero is not empty", NumberValue(0), Column{Field: "n", HeaderName: "N", Type: TypeNumber, Required: true}, true, ""},
		{"number garbage", StringValue("forty"), age, false, "Must be a number"},

		{"date string", StringValue("2024-01-15"), joined, true, ""},
		{"date native", DateValue(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), joined, true, ""},
		{"date garbage", StringValue("someday"), joined, false, "Must be a valid date"},

		{"bool native", BoolValue(false), active, true, ""},
		{"bool token", StringValue("TRUE"), active, true, ""},
		{"bool digit", StringValue("0"), active, true, ""},
		{"bool garbage", StringValue("maybe"), active, false, "Must be true or false"},

		{"email valid", StringValue("a@b.co"), email, true, ""},
		{"email invalid", StringValue("nope"), email, false, "Must be a valid email"},
		{"non-email string field skips shape check", StringValue("nope"), Column{Field: "contact", HeaderName: "Contact", Type: TypeString}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr, ok := ValidateCellValue(tt.value, tt.col)
			if ok != tt.wantOK {
				t.Fatalf("ValidateCellValue() ok = %v, want %v (err %v)", ok, tt.wantOK, verr)
			}
			if !ok {
				if verr.Message != tt.wantMsg {
					t.Errorf("message = %q, want %q", verr.Message, tt.wantMsg)
				}
				if verr.Field != tt.col.Field {
					t.Errorf("field = %q, want %q", verr.Field, tt.col.Field)
				}
			}
		})
	}
}

func TestValidateRow_SkipsHiddenColumns(t *testing.T) {
	cols := []Column{
		{Field: "name", HeaderName: "Name", Type: TypeString, Required: true, Visible: true},
		{Field: "secret", HeaderName: "Secret", Type: TypeString, Required: true, Visible: false},
		{Field: "age", HeaderName: "Age", Type: TypeNumber, Visible: true},
	}

	errs := ValidateRow(map[string]Value{"age": StringValue("x")}, cols)
	if len(errs) != 2 {
		t.Fatalf("ValidateRow() returned %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0].Field != "name" || errs[1].Field != "age" {
		t.Errorf("errors out of column order: %v", errs)
	}
}

func TestConvertToType(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		typ   ColumnType
		want  Value
	}{
		{"empty number stays empty string", StringValue(""), TypeNumber, StringValue("")},
		{"empty bool stays empty string", Value{}, TypeBoolean, StringValue("")},
		{"empty date stays empty string", StringValue(""), TypeDate, StringValue("")},
		{"number from string", StringValue("42.5"), TypeNumber, NumberValue(42.5)},
		{"number passthrough", NumberValue(7), TypeNumber, NumberValue(7)},
		{"bool true token", StringValue("true"), TypeBoolean, BoolValue(true)},
		{"bool false token", StringValue("false"), TypeBoolean, BoolValue(false)},
		{"bool zero token", StringValue("0"), TypeBoolean, BoolValue(false)},
		{"bool from number", NumberValue(0), TypeBoolean, BoolValue(false)},
		{"date from string", StringValue("2024-03-01"), TypeDate, DateValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{"string from number", NumberValue(30), TypeString, StringValue("30")},
		{"string from bool", BoolValue(true), TypeString, StringValue("true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertToType(tt.value, tt.typ)
			if !got.Equal(tt.want) {
				t.Errorf("ConvertToType(%#v, %s) = %#v, want %#v", tt.value, tt.typ, got, tt.want)
			}
		})
	}
}
