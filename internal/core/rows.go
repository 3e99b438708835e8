package core

import "sort"

// RowStore holds the ordered rows plus the selection and editing id sets.
// It enforces only its own invariants (unique non-empty ids, no dangling
// set members); cross-entity rules live in Table.
type RowStore struct {
	rows     []Row
	index    map[string]int
	selected map[string]struct{}
	editing  map[string]struct{}
}

// NewRowStore returns an empty store.
func NewRowStore() *RowStore {
	return &RowStore{
		index:    make(map[string]int),
		selected: make(map[string]struct{}),
		editing:  make(map[string]struct{}),
	}
}

// Len returns the number of rows.
func (s *RowStore) Len() int { return len(s.rows) }

// All returns deep copies of every row in insertion order.
func (s *RowStore) All() []Row {
	out := make([]Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Clone()
	}
	return out
}

// rowsView returns the backing slice for read-only use inside the package.
func (s *RowStore) rowsView() []Row { return s.rows }

// Get returns a copy of the row with the given id.
func (s *RowStore) Get(id string) (Row, bool) {
	i, ok := s.index[id]
	if !ok {
		return Row{}, false
	}
	return s.rows[i].Clone(), true
}

// Contains reports whether id is stored.
func (s *RowStore) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Add appends a row. Empty or duplicate ids are rejected.
func (s *RowStore) Add(r Row) error {
	if r.ID == "" {
		return &InvalidRowError{Reason: "missing id"}
	}
	if _, ok := s.index[r.ID]; ok {
		return &DuplicateIDError{Entity: "row", ID: r.ID}
	}
	s.index[r.ID] = len(s.rows)
	s.rows = append(s.rows, r.Clone())
	return nil
}

// Update merges partial into the row. Unknown ids are ignored and
// reported through the return value.
func (s *RowStore) Update(id string, partial map[string]Value) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	for k, v := range partial {
		if k == IDKey {
			continue
		}
		s.rows[i].Fields[k] = v
	}
	return true
}

// Delete removes a row and its selection and editing membership.
func (s *RowStore) Delete(id string) bool {
	return s.DeleteMany([]string{id}) == 1
}

// DeleteMany removes every listed row in one pass and returns how many
// were removed.
func (s *RowStore) DeleteMany(ids []string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := make([]Row, 0, len(s.rows)-len(drop))
	for _, r := range s.rows {
		if _, ok := drop[r.ID]; ok {
			delete(s.selected, r.ID)
			delete(s.editing, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	s.reindex()
	return len(drop)
}

// ReplaceAll swaps the whole collection. The input is checked first so a
// bad batch leaves the store untouched. Set members that no longer exist
// are pruned.
func (s *RowStore) ReplaceAll(rows []Row) error {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		if r.ID == "" {
			return &InvalidRowError{Reason: "missing id"}
		}
		if _, ok := index[r.ID]; ok {
			return &DuplicateIDError{Entity: "row", ID: r.ID}
		}
		index[r.ID] = i
	}

	next := make([]Row, len(rows))
	for i, r := range rows {
		next[i] = r.Clone()
	}
	s.rows = next
	s.index = index
	prune(s.selected, index)
	prune(s.editing, index)
	return nil
}

// stripField removes field from every row.
func (s *RowStore) stripField(field string) {
	for i := range s.rows {
		delete(s.rows[i].Fields, field)
	}
}

// backfill sets field to v on every row lacking it.
func (s *RowStore) backfill(field string, v Value) {
	for i := range s.rows {
		if _, ok := s.rows[i].Fields[field]; !ok {
			s.rows[i].Fields[field] = v
		}
	}
}

func (s *RowStore) reindex() {
	s.index = make(map[string]int, len(s.rows))
	for i, r := range s.rows {
		s.index[r.ID] = i
	}
}

// Selection

// Selected returns the selected ids, sorted.
func (s *RowStore) Selected() []string { return sortedKeys(s.selected) }

// IsSelected reports whether id is selected.
func (s *RowStore) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// SetSelected replaces the selection. Unknown ids are dropped.
func (s *RowStore) SetSelected(ids []string) {
	s.selected = s.known(ids)
}

// ToggleSelected flips membership of a known id.
func (s *RowStore) ToggleSelected(id string) bool {
	if !s.Contains(id) {
		return false
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	return true
}

// SelectAll selects every stored row.
func (s *RowStore) SelectAll() {
	s.selected = make(map[string]struct{}, len(s.rows))
	for _, r := range s.rows {
		s.selected[r.ID] = struct{}{}
	}
}

// ClearSelection empties the selection.
func (s *RowStore) ClearSelection() {
	s.selected = make(map[string]struct{})
}

// Editing

// Editing returns the ids in the editing state, sorted.
func (s *RowStore) Editing() []string { return sortedKeys(s.editing) }

// IsEditing reports whether id is being edited.
func (s *RowStore) IsEditing(id string) bool {
	_, ok := s.editing[id]
	return ok
}

// StartEditing marks a known id as editing.
func (s *RowStore) StartEditing(id string) bool {
	if !s.Contains(id) {
		return false
	}
	s.editing[id] = struct{}{}
	return true
}

// StopEditing clears the editing flag.
func (s *RowStore) StopEditing(id string) {
	delete(s.editing, id)
}

// SetEditing replaces the editing set. Unknown ids are dropped.
func (s *RowStore) SetEditing(ids []string) {
	s.editing = s.known(ids)
}

func (s *RowStore) known(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if s.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

func prune(set map[string]struct{}, index map[string]int) {
	for id := range set {
		if _, ok := index[id]; !ok {
			delete(set, id)
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
