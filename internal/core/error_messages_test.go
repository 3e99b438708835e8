package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "duplicate field maps by type",
			err:         &DuplicateFieldError{Field: "email"},
			wantCode:    "SCH001",
			wantMessage: "Another column already uses this field name",
		},
		{
			name:        "wrapped not found maps by type",
			err:         fmt.Errorf("delete: %w", &NotFoundError{Entity: "row", ID: "x"}),
			wantCode:    "SCH002",
			wantMessage: "The column or row no longer exists",
		},
		{
			name:        "invalid column carries its reason",
			err:         &InvalidColumnError{Field: "x", Reason: "header name is required"},
			wantCode:    "SCH005",
			wantMessage: "header name is required",
		},
		{
			name:        "import rejected",
			err:         fmt.Errorf("%w (2 error(s))", ErrImportRejected),
			wantCode:    "IMP001",
			wantMessage: "Some rows have validation errors",
		},
		{
			name:        "file size pattern",
			err:         &FileError{Reason: "File size must be less than 5MB"},
			wantCode:    "FILE001",
			wantMessage: "File size must be less than 5MB",
		},
		{
			name:        "not a csv pattern",
			err:         &FileError{Reason: "Please select a CSV file"},
			wantCode:    "FILE002",
			wantMessage: "Please select a CSV file",
		},
		{
			name:        "context deadline",
			err:         fmt.Errorf("parse: %w", context.DeadlineExceeded),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("TOO MANY IMPORTS in progress"),
			wantCode:    "IMP002",
			wantMessage: "Another import is already running",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNothingPending)

	expected := "There is no action waiting for confirmation (Code: CONF001). Start the action again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  &RangeError{Index: 9, Len: 2},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		tech := fmt.Errorf("%w: row_1", ErrNotEditing)
		ue := NewUserError(tech)

		if ue.Error() != "The row is not in edit mode" {
			t.Errorf("Error() = %q", ue.Error())
		}
		if ue.User.Code != "EDIT001" {
			t.Errorf("Code = %q, want EDIT001", ue.User.Code)
		}
		if !errors.Is(ue, ErrNotEditing) {
			t.Error("Unwrap should expose the technical error")
		}
	})
}

func TestImportErrors(t *testing.T) {
	if ImportErrors(nil) != nil {
		t.Error("ImportErrors(nil) should be nil")
	}

	err := ImportErrors([]ImportError{
		{Row: 2, Field: "email", Message: "Email is required"},
		{Row: 3, Field: "age", Message: "Age must be a number"},
	})
	want := "2 import error(s):\n  - row 2: email: Email is required\n  - row 3: age: Age must be a number"
	if err == nil || err.Error() != want {
		t.Errorf("ImportErrors() = %q, want %q", err, want)
	}
}
