package core

import "fmt"

// Rows

// AddRow stores r. An empty ID is generated. The stored copy is returned.
func (t *Table) AddRow(r Row) (Row, error) {
	if r.ID == "" {
		r.ID = NewRowID()
	}
	r = r.Clone()
	if err := t.rows.Add(r); err != nil {
		return Row{}, err
	}
	t.logger.Debug("row added", "id", r.ID)
	t.publish(ChangeRowAdded, []string{r.ID})
	return r, nil
}

// AddBlankRow adds a row holding an empty value for every column and puts
// it into editing.
func (t *Table) AddBlankRow() (Row, error) {
	fields := make(map[string]Value, t.schema.Len())
	for _, c := range t.schema.columns {
		fields[c.Field] = Empty
	}
	r, err := t.AddRow(NewRow(NewRowID(), fields))
	if err != nil {
		return Row{}, err
	}
	if err := t.StartEditing(r.ID); err != nil {
		return Row{}, err
	}
	return r, nil
}

// UpdateRow merges partial into a row. Unknown ids are a silent no-op and
// return false.
func (t *Table) UpdateRow(id string, partial map[string]Value) bool {
	if !t.rows.Update(id, partial) {
		return false
	}
	t.logger.Debug("row updated", "id", id, "fields", len(partial))
	t.publish(ChangeRowUpdated, []string{id})
	return true
}

// DeleteRow removes a row, its draft and its selection/editing membership.
func (t *Table) DeleteRow(id string) bool {
	return t.DeleteRows([]string{id}) == 1
}

// DeleteRows removes every listed row in one step and returns the count.
func (t *Table) DeleteRows(ids []string) int {
	n := t.rows.DeleteMany(ids)
	if n == 0 {
		return 0
	}
	for _, id := range ids {
		delete(t.drafts, id)
	}
	t.logger.Debug("rows deleted", "count", n)
	t.publish(ChangeRowsDeleted, ids)
	return n
}

// Columns

// AddColumn registers def and back-fills an empty value into every row
// lacking the field.
func (t *Table) AddColumn(def Column) (Column, error) {
	col, err := t.schema.Add(def)
	if err != nil {
		return Column{}, err
	}
	t.rows.backfill(col.Field, Empty)
	for _, d := range t.drafts {
		if _, ok := d[col.Field]; !ok {
			d[col.Field] = Empty
		}
	}
	t.logger.Debug("column added", "id", col.ID, "field", col.Field, "type", col.Type)
	t.publish(ChangeColumnAdded, []string{col.ID})
	return col, nil
}

// UpdateColumn merges patch into a column. Renaming the field leaves row
// data under the old key.
func (t *Table) UpdateColumn(id string, patch ColumnPatch) (Column, error) {
	before, _ := t.schema.Column(id)
	col, err := t.schema.Update(id, patch)
	if err != nil {
		return Column{}, err
	}
	if before.Field != col.Field && t.sort != nil && t.sort.Field == before.Field {
		t.sort = nil
	}
	if t.sort != nil && t.sort.Field == col.Field && !col.Sortable {
		t.sort = nil
	}
	t.logger.Debug("column updated", "id", id, "field", col.Field)
	t.publish(ChangeColumnUpdated, []string{id})
	return col, nil
}

// DeleteColumn removes a column and strips its field from every row and draft.
func (t *Table) DeleteColumn(id string) (Column, error) {
	col, err := t.schema.Remove(id)
	if err != nil {
		return Column{}, err
	}
	t.rows.stripField(col.Field)
	for _, d := range t.drafts {
		delete(d, col.Field)
	}
	if t.sort != nil && t.sort.Field == col.Field {
		t.sort = nil
	}
	t.logger.Debug("column deleted", "id", id, "field", col.Field)
	t.publish(ChangeColumnDeleted, []string{id})
	return col, nil
}

// ToggleColumnVisibility flips a column's visibility.
func (t *Table) ToggleColumnVisibility(id string) (Column, error) {
	col, err := t.schema.ToggleVisibility(id)
	if err != nil {
		return Column{}, err
	}
	t.publish(ChangeColumnUpdated, []string{id})
	return col, nil
}

// ReorderColumns moves the column at src to dst.
func (t *Table) ReorderColumns(src, dst int) error {
	if err := t.schema.Reorder(src, dst); err != nil {
		return err
	}
	if src != dst {
		t.publish(ChangeColumnsReorder, nil)
	}
	return nil
}

// Import

// ImportRows replaces every row with rows. When importErrs is non-empty
// the import only proceeds if force is set; otherwise nothing changes and
// ErrImportRejected is returned.
func (t *Table) ImportRows(rows []Row, importErrs []ImportError, force bool) error {
	if len(importErrs) > 0 && !force {
		t.logger.Warn("import rejected",
			"rows", len(rows),
			"errors", len(importErrs),
			"detail", ImportErrors(importErrs))
		return fmt.Errorf("%w (%d error(s))", ErrImportRejected, len(importErrs))
	}

	if err := t.rows.ReplaceAll(rows); err != nil {
		return err
	}
	for id := range t.drafts {
		if !t.rows.IsEditing(id) {
			delete(t.drafts, id)
		}
	}
	t.page = 0

	t.logger.Info("rows imported", "rows", len(rows), "errors", len(importErrs), "forced", force && len(importErrs) > 0)
	t.publish(ChangeRowsReplaced, nil)
	return nil
}

// Selection

// Selected returns the selected row ids, sorted.
func (t *Table) Selected() []string { return t.rows.Selected() }

// SetSelected replaces the selection. Unknown ids are dropped.
func (t *Table) SetSelected(ids []string) { t.rows.SetSelected(ids) }

// ToggleSelected flips one row's selection. Returns false for unknown ids.
func (t *Table) ToggleSelected(id string) bool { return t.rows.ToggleSelected(id) }

// SelectAll selects every row in the table.
func (t *Table) SelectAll() { t.rows.SelectAll() }

// SelectPage selects exactly the rows on the current view page.
func (t *Table) SelectPage() []string {
	view := t.View()
	ids := make([]string, len(view.Rows))
	for i, r := range view.Rows {
		ids[i] = r.ID
	}
	t.rows.SetSelected(ids)
	return ids
}

// ClearSelection empties the selection.
func (t *Table) ClearSelection() { t.rows.ClearSelection() }
