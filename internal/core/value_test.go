package core

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"unset", Value{}, ""},
		{"string", StringValue("x"), "x"},
		{"integer number", NumberValue(30), "30"},
		{"fraction", NumberValue(0.25), "0.25"},
		{"large number has no exponent", NumberValue(1e21), "1000000000000000000000"},
		{"bool", BoolValue(false), "false"},
		{"midnight date", DateValue(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), "2024-01-02"},
		{"timestamp", DateValue(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), "2024-01-02T03:04:05Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueIsEmpty(t *testing.T) {
	if !(Value{}).IsEmpty() || !StringValue("").IsEmpty() {
		t.Error("unset and empty string should be empty")
	}
	if NumberValue(0).IsEmpty() || BoolValue(false).IsEmpty() || StringValue(" ").IsEmpty() {
		t.Error("zero, false and whitespace are not empty")
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{StringValue("a"), `"a"`},
		{NumberValue(1.5), `1.5`},
		{NumberValue(math.Inf(1)), `null`},
		{BoolValue(true), `true`},
		{Value{}, `null`},
		{DateValue(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)), `"2024-05-06"`},
	}

	for _, tt := range tests {
		b, err := json.Marshal(tt.v)
		if err != nil {
			t.Fatalf("Marshal(%#v) error = %v", tt.v, err)
		}
		if string(b) != tt.want {
			t.Errorf("Marshal(%#v) = %s, want %s", tt.v, b, tt.want)
		}
	}

	var v Value
	if err := json.Unmarshal([]byte(`{"a":1}`), &v); err == nil {
		t.Error("Unmarshal(object) error = nil")
	}
}

func TestRowJSON(t *testing.T) {
	r := NewRow("r1", map[string]Value{
		"name": StringValue("Ada"),
		"age":  NumberValue(36),
		"ok":   BoolValue(true),
		"none": {},
	})

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"r1","age":36,"name":"Ada","none":null,"ok":true}`
	if string(b) != want {
		t.Errorf("Marshal() = %s, want %s", b, want)
	}

	var back Row
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != "r1" || !back.Value("age").Equal(NumberValue(36)) || !back.Value("ok").Equal(BoolValue(true)) {
		t.Errorf("Unmarshal() = %+v", back)
	}
	if _, ok := back.Get("none"); !ok {
		t.Error("null field should keep its key")
	}
}

func TestNewRow_DropsIDKey(t *testing.T) {
	r := NewRow("a", map[string]Value{IDKey: StringValue("b"), "x": StringValue("y")})
	if r.Has(IDKey) || r.ID != "a" {
		t.Errorf("NewRow() = %+v", r)
	}
}
