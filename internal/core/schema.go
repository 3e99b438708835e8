package core

import (
	"fmt"
	"sort"
)

// Schema is the column registry. Columns are kept sorted by Order, and
// Order is always the dense sequence 0..N-1.
type Schema struct {
	columns []Column
	used    map[string]struct{} // every column id issued this session
}

// NewSchema returns an empty registry.
func NewSchema() *Schema {
	return &Schema{used: make(map[string]struct{})}
}

// newSchemaFrom builds a registry from persisted columns. Columns are
// ordered by their Order (ties keep input position) and renumbered densely.
func newSchemaFrom(columns []Column) (*Schema, error) {
	s := NewSchema()

	sorted := make([]Column, len(columns))
	copy(sorted, columns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	for _, col := range sorted {
		if col.ID == "" {
			return nil, &InvalidColumnError{Field: col.Field, Reason: "missing id"}
		}
		if _, err := s.Add(col); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Columns returns a copy of all columns in display order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Visible returns the visible columns in display order.
func (s *Schema) Visible() []Column {
	var out []Column
	for _, c := range s.columns {
		if c.Visible {
			out = append(out, c)
		}
	}
	return out
}

// Column returns the column with the given id.
func (s *Schema) Column(id string) (Column, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.columns[i], true
	}
	return Column{}, false
}

// ColumnByField returns the column with the given field.
func (s *Schema) ColumnByField(field string) (Column, bool) {
	for _, c := range s.columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// Fields returns field names in display order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Field
	}
	return out
}

// Add appends a column with Order = Len(). An empty ID is generated, an
// empty Type defaults to string and a zero Width to DefaultColumnWidth.
func (s *Schema) Add(def Column) (Column, error) {
	if def.ID == "" {
		def.ID = NewColumnID()
	}
	if def.Type == "" {
		def.Type = TypeString
	}
	if def.Width == 0 {
		def.Width = DefaultColumnWidth
	}

	if _, seen := s.used[def.ID]; seen {
		return Column{}, &DuplicateIDError{Entity: "column", ID: def.ID}
	}
	if err := s.checkColumn(def, ""); err != nil {
		return Column{}, err
	}

	def.Order = len(s.columns)
	s.columns = append(s.columns, def)
	s.used[def.ID] = struct{}{}
	return def, nil
}

// Update merges patch into the column in place. Renaming the field does
// not touch row data.
func (s *Schema) Update(id string, patch ColumnPatch) (Column, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Column{}, &NotFoundError{Entity: "column", ID: id}
	}

	updated := patch.apply(s.columns[i])
	if err := s.checkColumn(updated, id); err != nil {
		return Column{}, err
	}

	s.columns[i] = updated
	return updated, nil
}

// Remove deletes the column and renumbers the rest densely.
// The id stays retired for the session.
func (s *Schema) Remove(id string) (Column, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Column{}, &NotFoundError{Entity: "column", ID: id}
	}

	removed := s.columns[i]
	s.columns = append(s.columns[:i], s.columns[i+1:]...)
	s.renumber()
	return removed, nil
}

// ToggleVisibility flips Visible and returns the updated column.
func (s *Schema) ToggleVisibility(id string) (Column, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Column{}, &NotFoundError{Entity: "column", ID: id}
	}
	s.columns[i].Visible = !s.columns[i].Visible
	return s.columns[i], nil
}

// Reorder moves the column at src to dst and reassigns Order by position.
func (s *Schema) Reorder(src, dst int) error {
	n := len(s.columns)
	if src < 0 || src >= n {
		return &RangeError{Index: src, Len: n}
	}
	if dst < 0 || dst >= n {
		return &RangeError{Index: dst, Len: n}
	}
	if src == dst {
		return nil
	}

	moved := s.columns[src]
	rest := append(s.columns[:src:src], s.columns[src+1:]...)

	reordered := make([]Column, 0, n)
	reordered = append(reordered, rest[:dst]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[dst:]...)

	s.columns = reordered
	s.renumber()
	return nil
}

// retire marks ids as used so they are never issued again.
func (s *Schema) retire(ids map[string]struct{}) {
	for id := range ids {
		s.used[id] = struct{}{}
	}
}

func (s *Schema) renumber() {
	for i := range s.columns {
		s.columns[i].Order = i
	}
}

func (s *Schema) indexOf(id string) int {
	for i, c := range s.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// checkColumn validates c against the registry, ignoring the column with
// id self (used by Update).
func (s *Schema) checkColumn(c Column, self string) error {
	if !ValidFieldName(c.Field) {
		return &InvalidColumnError{
			Field:  c.Field,
			Reason: "field must start with a letter, contain only letters, numbers and underscores, and not be \"id\"",
		}
	}
	if c.HeaderName == "" {
		return &InvalidColumnError{Field: c.Field, Reason: "header name is required"}
	}
	if !c.Type.Valid() {
		return &InvalidColumnError{Field: c.Field, Reason: fmt.Sprintf("unknown type %q", c.Type)}
	}
	if c.Width <= 0 {
		return &InvalidColumnError{Field: c.Field, Reason: "width must be positive"}
	}

	for _, other := range s.columns {
		if other.ID != self && other.Field == c.Field {
			return &DuplicateFieldError{Field: c.Field}
		}
	}
	return nil
}
