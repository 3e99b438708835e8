package core

// errors.go defines the error taxonomy of the engine.
//
// Schema errors (duplicate field, unknown id, bad index, malformed column)
// indicate caller misuse and are returned as typed errors that all match
// ErrSchema with errors.Is. Validation and import problems are expected,
// data-dependent outcomes and are returned as values, never as errors.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrSchema matches every structural invariant violation.
	ErrSchema = errors.New("schema violation")

	// ErrNotEditing is returned when a draft operation targets a row that is
	// not in the editing state.
	ErrNotEditing = errors.New("row is not being edited")

	// ErrImportRejected is returned by ImportRows when import errors exist
	// and the caller did not force the import.
	ErrImportRejected = errors.New("import rejected: rows have validation errors")

	// ErrNothingPending is returned by Confirm when no intent is pending.
	ErrNothingPending = errors.New("no pending action to confirm")

	// ErrEmptySelection is returned when a bulk intent has no rows to act on.
	ErrEmptySelection = errors.New("no rows selected")
)

// DuplicateFieldError reports a field name collision.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate field: %q already exists", e.Field)
}

func (e *DuplicateFieldError) Is(target error) bool { return target == ErrSchema }

// NotFoundError reports an unknown column or row id.
type NotFoundError struct {
	Entity string // "column" or "row"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrSchema }

// DuplicateIDError reports an id that is already in use, or for columns,
// was used earlier in the session.
type DuplicateIDError struct {
	Entity string
	ID     string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id: %s", e.Entity, e.ID)
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrSchema }

// RangeError reports a column index outside [0, Len).
type RangeError struct {
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("index out of range: %d not in [0, %d)", e.Index, e.Len)
}

func (e *RangeError) Is(target error) bool { return target == ErrSchema }

// InvalidColumnError reports a malformed column definition.
type InvalidColumnError struct {
	Field  string
	Reason string
}

func (e *InvalidColumnError) Error() string {
	if e.Field == "" {
		return "invalid column: " + e.Reason
	}
	return fmt.Sprintf("invalid column %q: %s", e.Field, e.Reason)
}

func (e *InvalidColumnError) Is(target error) bool { return target == ErrSchema }

// InvalidRowError reports a row that cannot enter the store.
type InvalidRowError struct {
	Reason string
}

func (e *InvalidRowError) Error() string { return "invalid row: " + e.Reason }

func (e *InvalidRowError) Is(target error) bool { return target == ErrSchema }

// FileError reports an upload rejected before parsing.
type FileError struct {
	Reason string
}

func (e *FileError) Error() string { return e.Reason }

// ImportError is one per-row problem found while importing.
// Row is 1-based over data records.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ImportError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// ImportErrors joins import problems into one error, nil when empty.
func ImportErrors(errs []ImportError) error {
	var merr *multierror.Error
	for _, e := range errs {
		merr = multierror.Append(merr, e)
	}
	if merr == nil {
		return nil
	}
	merr.ErrorFormat = func(es []error) string {
		lines := make([]string, len(es))
		for i, e := range es {
			lines[i] = e.Error()
		}
		return fmt.Sprintf("%d import error(s):\n  - %s", len(es), strings.Join(lines, "\n  - "))
	}
	return merr.ErrorOrNil()
}
