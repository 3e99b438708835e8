package core

import "fmt"

// StartEditing snapshots the row's current values into a draft and marks
// it as editing. Starting again on an editing row keeps the existing draft.
func (t *Table) StartEditing(id string) error {
	r, ok := t.rows.Get(id)
	if !ok {
		return &NotFoundError{Entity: "row", ID: id}
	}
	t.rows.StartEditing(id)
	if _, ok := t.drafts[id]; !ok {
		t.drafts[id] = r.Fields
	}
	return nil
}

// IsEditing reports whether a row is in the editing state.
func (t *Table) IsEditing(id string) bool { return t.rows.IsEditing(id) }

// Editing returns the ids of rows being edited, sorted.
func (t *Table) Editing() []string { return t.rows.Editing() }

// Draft returns a copy of the uncommitted values of an editing row.
func (t *Table) Draft(id string) (map[string]Value, bool) {
	d, ok := t.drafts[id]
	if !ok {
		return nil, false
	}
	return cloneFields(d), true
}

// SetDraftValue changes one value in a row's draft.
func (t *Table) SetDraftValue(id, field string, v Value) error {
	d, ok := t.drafts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotEditing, id)
	}
	if field == IDKey {
		return &InvalidRowError{Reason: "id is not editable"}
	}
	d[field] = v
	return nil
}

// CommitEditing validates the draft, overlaid with values, against every
// visible column. When all pass, visible columns are coerced to their
// types, merged into the row, and editing ends; the returned slice is
// empty. Otherwise nothing is written, the row stays editing with the
// overlaid draft, and every field problem is returned.
func (t *Table) CommitEditing(id string, values map[string]Value) ([]ValidationError, error) {
	d, ok := t.drafts[id]
	if !ok {
		if !t.rows.Contains(id) {
			return nil, &NotFoundError{Entity: "row", ID: id}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotEditing, id)
	}

	candidate := cloneFields(d)
	for k, v := range values {
		if k == IDKey {
			continue
		}
		candidate[k] = v
	}

	visible := t.schema.Visible()
	if errs := ValidateRow(candidate, visible); len(errs) > 0 {
		t.drafts[id] = candidate
		t.logger.Debug("commit rejected", "id", id, "errors", len(errs))
		return errs, nil
	}

	for _, col := range visible {
		if v, ok := candidate[col.Field]; ok {
			candidate[col.Field] = ConvertToType(v, col.Type)
		}
	}

	t.rows.Update(id, candidate)
	t.rows.StopEditing(id)
	delete(t.drafts, id)

	t.logger.Debug("row committed", "id", id)
	t.publish(ChangeRowUpdated, []string{id})
	return nil, nil
}

// CancelEditing discards a row's draft and ends editing. Stored data is
// untouched.
func (t *Table) CancelEditing(id string) {
	delete(t.drafts, id)
	t.rows.StopEditing(id)
}

// SetEditing makes ids the editing set. Rows entering it get a fresh
// draft; rows leaving it lose theirs.
func (t *Table) SetEditing(ids []string) {
	t.rows.SetEditing(ids)
	for id := range t.drafts {
		if !t.rows.IsEditing(id) {
			delete(t.drafts, id)
		}
	}
	for _, id := range t.rows.Editing() {
		if _, ok := t.drafts[id]; !ok {
			r, _ := t.rows.Get(id)
			t.drafts[id] = r.Fields
		}
	}
}

// CommitAll commits every editing row with its draft. Rows that fail
// validation stay editing; their errors are returned keyed by row id.
func (t *Table) CommitAll() map[string][]ValidationError {
	failed := make(map[string][]ValidationError)
	for _, id := range t.rows.Editing() {
		errs, err := t.CommitEditing(id, nil)
		if err != nil {
			continue
		}
		if len(errs) > 0 {
			failed[id] = errs
		}
	}
	return failed
}

// CancelAll discards every draft and clears the editing set.
func (t *Table) CancelAll() {
	t.drafts = make(map[string]map[string]Value)
	t.rows.SetEditing(nil)
}
