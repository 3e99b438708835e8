package core

import "testing"

func TestSanitizeFieldName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Name", "name"},
		{"  First Name  ", "first_name"},
		{"Annual   Salary", "annual_salary"},
		{"E-mail", "email"},
		{"Cost ($)", "cost_"},
		{"2024 Revenue", "_revenue"},
		{"123", ""},
		{"!!!", ""},
		{"already_snake", "already_snake"},
		{"tab\tseparated", "tab_separated"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFieldName(tt.input); got != tt.want {
				t.Errorf("SanitizeFieldName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidFieldName(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{"name", true},
		{"Name2", true},
		{"first_name", true},
		{"_hidden", false},
		{"2col", false},
		{"has space", false},
		{"", false},
		{"id", false},
	}

	for _, tt := range tests {
		if got := ValidFieldName(tt.field); got != tt.want {
			t.Errorf("ValidFieldName(%q) = %v, want %v", tt.field, got, tt.want)
		}
	}
}
