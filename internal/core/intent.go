package core

import "fmt"

// IntentKind names a destructive action awaiting confirmation.
type IntentKind string

const (
	IntentDeleteRow      IntentKind = "delete_row"
	IntentDeleteRows     IntentKind = "delete_rows"
	IntentDeleteColumn   IntentKind = "delete_column"
	IntentCancelAllEdits IntentKind = "cancel_all_edits"
)

// Intent describes a pending action as data. It is resolved by Confirm.
type Intent struct {
	Kind     IntentKind `json:"kind"`
	RowID    string     `json:"rowId,omitempty"`
	RowIDs   []string   `json:"rowIds,omitempty"`
	ColumnID string     `json:"columnId,omitempty"`
}

// Confirmation is the text shown to the user for a pending intent.
type Confirmation struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Intent  Intent `json:"intent"`
}

// Propose resolves in against the current state and stores it as the
// pending action, replacing any earlier one. DeleteRows with no ids uses
// the current selection.
func (t *Table) Propose(in Intent) (Confirmation, error) {
	var c Confirmation

	switch in.Kind {
	case IntentDeleteRow:
		if !t.rows.Contains(in.RowID) {
			return c, &NotFoundError{Entity: "row", ID: in.RowID}
		}
		c.Title = "Delete Row"
		c.Message = "Are you sure you want to delete this row? This action cannot be undone."

	case IntentDeleteRows:
		ids := in.RowIDs
		if len(ids) == 0 {
			ids = t.rows.Selected()
		}
		var known []string
		for _, id := range ids {
			if t.rows.Contains(id) {
				known = append(known, id)
			}
		}
		if len(known) == 0 {
			return c, ErrEmptySelection
		}
		in.RowIDs = known
		c.Title = "Delete Selected Rows"
		c.Message = fmt.Sprintf("Are you sure you want to delete %d selected row(s)? This action cannot be undone.", len(known))

	case IntentDeleteColumn:
		col, ok := t.schema.Column(in.ColumnID)
		if !ok {
			return c, &NotFoundError{Entity: "column", ID: in.ColumnID}
		}
		c.Title = "Delete Column"
		c.Message = fmt.Sprintf("Are you sure you want to delete the \"%s\" column? This will remove all data in this column and cannot be undone.", col.HeaderName)

	case IntentCancelAllEdits:
		c.Title = "Cancel All Edits"
		c.Message = "Are you sure you want to cancel all edits? Any unsaved changes will be lost."

	default:
		return c, fmt.Errorf("unknown intent %q", in.Kind)
	}

	c.Intent = in
	t.pending = &in
	return c, nil
}

// Pending returns the intent awaiting confirmation.
func (t *Table) Pending() (Intent, bool) {
	if t.pending == nil {
		return Intent{}, false
	}
	return *t.pending, true
}

// Confirm applies the pending intent and clears it. The intent is cleared
// even when applying it fails.
func (t *Table) Confirm() (Intent, error) {
	if t.pending == nil {
		return Intent{}, ErrNothingPending
	}
	in := *t.pending
	t.pending = nil

	switch in.Kind {
	case IntentDeleteRow:
		if !t.DeleteRow(in.RowID) {
			return in, &NotFoundError{Entity: "row", ID: in.RowID}
		}
	case IntentDeleteRows:
		t.DeleteRows(in.RowIDs)
		t.rows.ClearSelection()
	case IntentDeleteColumn:
		if _, err := t.DeleteColumn(in.ColumnID); err != nil {
			return in, err
		}
	case IntentCancelAllEdits:
		t.CancelAll()
	}
	return in, nil
}

// Dismiss drops the pending intent without applying it.
func (t *Table) Dismiss() {
	t.pending = nil
}
