// Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Users can quote the code to support staff for faster
// diagnosis.
//
// Error codes are grouped by category:
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Duplicate field: Another column already uses this field name
//	         Action: Choose a different field name
//	SCH002 - Not found: The column or row no longer exists
//	         Action: Refresh the table and try again
//	SCH003 - Duplicate id: This identifier is already in use
//	         Action: Refresh the table and try again
//	SCH004 - Out of range: Column position is outside the table
//	         Action: Refresh the table and try again
//	SCH005 - Invalid column: The column definition is incomplete or malformed
//	         Action: Field names must start with a letter and use letters, numbers and underscores
//	SCH006 - Invalid row: The row is missing its identifier
//	         Action: Refresh the table and try again
//
// # Editing Errors (EDIT001-EDIT099)
//
//	EDIT001 - Not editing: The row is not in edit mode
//	          Action: Click edit on the row first
//	EDIT002 - Invalid values: Some values are invalid
//	          Patterns: "row has invalid values"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Import rejected: Some rows have validation errors
//	         Action: Fix the rows listed, or import anyway
//	IMP002 - Import busy: Another import is already running
//	         Action: Wait for the current import to finish
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File size must be less than 5MB
//	          Patterns: "file size must be", "file too large"
//	FILE002 - Not a CSV: Please select a CSV file
//	          Patterns: "select a csv file"
//	FILE003 - Encoding error: File contains invalid characters
//	          Patterns: "encoding error", "invalid utf-8"
//	FILE004 - No file: No file was selected
//	          Patterns: "no file provided"
//	FILE005 - Empty file: The uploaded file has no data rows
//	          Patterns: "empty file"
//	FILE006 - Invalid CSV: The file could not be parsed
//	          Patterns: "parse error", "wrong number of fields", "invalid json"
//	FILE007 - Bad delimiter: The delimiter is not supported
//	          Patterns: "invalid delimiter"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Invalid filename: Filename can only contain letters, numbers, spaces, hyphens, and underscores
//	         Patterns: "export filename"
//	EXP002 - Invalid format: Export format must be csv or json
//	         Patterns: "export format"
//
// # Confirmation Errors (CONF001-CONF099)
//
//	CONF001 - Nothing pending: There is no action waiting for confirmation
//	CONF002 - Nothing selected: No rows are selected
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Patterns "context canceled"
//	REQ002 - Request timeout: Patterns "context deadline exceeded", "timeout"
//	REQ003 - Bad request: Patterns "invalid request body"
//
// # Storage Errors (STO001-STO099)
//
//	STO001 - No snapshot: No saved table was found
//	         Patterns: "no snapshot"
//	STO002 - Storage unavailable: The local table store could not be used
//	         Patterns: "database is locked", "unable to open database"
//
// # Auth Errors (AUTH001-AUTH099)
//
//	AUTH001 - API key required: written by the web auth middleware
//	AUTH002 - API key not recognised: written by the web auth middleware
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Typed errors from this package are matched first with errors.Is and
// errors.As. Anything else falls through to case-insensitive substring
// patterns; the first matching pattern wins.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgDuplicateField = UserMessage{"Another column already uses this field name", "Choose a different field name", "SCH001"}
	msgNotFound       = UserMessage{"The column or row no longer exists", "Refresh the table and try again", "SCH002"}
	msgDuplicateID    = UserMessage{"This identifier is already in use", "Refresh the table and try again", "SCH003"}
	msgOutOfRange     = UserMessage{"Column position is outside the table", "Refresh the table and try again", "SCH004"}
	msgInvalidColumn  = UserMessage{"The column definition is incomplete or malformed", "Field names must start with a letter and use letters, numbers and underscores", "SCH005"}
	msgInvalidRow     = UserMessage{"The row is missing its identifier", "Refresh the table and try again", "SCH006"}
	msgNotEditing     = UserMessage{"The row is not in edit mode", "Click edit on the row first", "EDIT001"}
	msgImportRejected = UserMessage{"Some rows have validation errors", "Fix the rows listed, or import anyway", "IMP001"}
	msgNothingPending = UserMessage{"There is no action waiting for confirmation", "Start the action again", "CONF001"}
	msgEmptySelection = UserMessage{"No rows are selected", "Select one or more rows first", "CONF002"}
	msgCancelled      = UserMessage{"Request was cancelled", "Please try again", "REQ001"}
	msgTimeout        = UserMessage{"Request timed out", "Try a smaller file or check your connection", "REQ002"}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages. Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// File errors
	{"file size must be", UserMessage{"File size must be less than 5MB", "Split the file into smaller files", "FILE001"}},
	{"file too large", UserMessage{"File size must be less than 5MB", "Split the file into smaller files", "FILE001"}},
	{"request body too large", UserMessage{"File size must be less than 5MB", "Split the file into smaller files", "FILE001"}},
	{"select a csv file", UserMessage{"Please select a CSV file", "Choose a file ending in .csv", "FILE002"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}},
	{"invalid utf-8", UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV file to import", "FILE004"}},
	{"empty file", UserMessage{"The uploaded file has no data rows", "Please upload a CSV file with data rows", "FILE005"}},
	{"parse error", UserMessage{"The file could not be parsed", "Check the delimiter and quoting of your file", "FILE006"}},
	{"wrong number of fields", UserMessage{"The file could not be parsed", "Check that every row has the same number of columns", "FILE006"}},
	{"invalid json", UserMessage{"The file could not be parsed", "Check that the file is a JSON array of objects", "FILE006"}},
	{"invalid delimiter", UserMessage{"The delimiter is not supported", "Use a comma, semicolon, tab or pipe", "FILE007"}},

	// Import and export
	{"too many imports", UserMessage{"Another import is already running", "Wait for the current import to finish", "IMP002"}},
	{"export filename", UserMessage{"Filename can only contain letters, numbers, spaces, hyphens, and underscores", "Use at most 50 characters", "EXP001"}},
	{"export format", UserMessage{"Export format must be csv or json", "Choose CSV or JSON", "EXP002"}},

	// Editing
	{"row has invalid values", UserMessage{"Some values are invalid", "Fix the highlighted fields and save again", "EDIT002"}},

	// Storage
	{"no snapshot", UserMessage{"No saved table was found", "Start from the sample data or import a file", "STO001"}},
	{"database is locked", UserMessage{"The local table store is busy", "Please try again", "STO002"}},
	{"unable to open database", UserMessage{"The local table store could not be opened", "Check the storage path configuration", "STO002"}},

	// Requests
	{"invalid request body", UserMessage{"The request could not be read", "Check the request format", "REQ003"}},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	err := &DuplicateFieldError{Field: "email"}
//	msg := MapError(err)
//	// msg.Code == "SCH001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var (
		dupField  *DuplicateFieldError
		notFound  *NotFoundError
		dupID     *DuplicateIDError
		rangeErr  *RangeError
		badColumn *InvalidColumnError
		badRow    *InvalidRowError
	)

	switch {
	case errors.As(err, &dupField):
		return msgDuplicateField, true
	case errors.As(err, &notFound):
		return msgNotFound, true
	case errors.As(err, &dupID):
		return msgDuplicateID, true
	case errors.As(err, &rangeErr):
		return msgOutOfRange, true
	case errors.As(err, &badColumn):
		msg := msgInvalidColumn
		msg.Message = badColumn.Reason
		return msg, true
	case errors.As(err, &badRow):
		return msgInvalidRow, true
	case errors.Is(err, ErrNotEditing):
		return msgNotEditing, true
	case errors.Is(err, ErrImportRejected):
		return msgImportRejected, true
	case errors.Is(err, ErrNothingPending):
		return msgNothingPending, true
	case errors.Is(err, ErrEmptySelection):
		return msgEmptySelection, true
	case errors.Is(err, context.Canceled):
		return msgCancelled, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, true
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
