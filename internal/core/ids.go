package core

import "github.com/google/uuid"

// NewRowID returns a fresh row identifier.
func NewRowID() string {
	return "row_" + uuid.New().String()
}

// NewColumnID returns a fresh column identifier.
func NewColumnID() string {
	return "col_" + uuid.New().String()
}
