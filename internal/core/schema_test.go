package core

import (
	"errors"
	"testing"
)

func newTestSchema(t *testing.T, fields ...string) *Schema {
	t.Helper()
	s := NewSchema()
	for _, f := range fields {
		if _, err := s.Add(NewColumn(f, f, TypeString)); err != nil {
			t.Fatalf("Add(%q) error = %v", f, err)
		}
	}
	return s
}

func assertDenseOrder(t *testing.T, s *Schema) {
	t.Helper()
	for i, c := range s.Columns() {
		if c.Order != i {
			t.Fatalf("column %q at position %d has order %d", c.Field, i, c.Order)
		}
	}
}

func TestSchemaAdd(t *testing.T) {
	s := newTestSchema(t, "a", "b")

	col, err := s.Add(NewColumn("c", "C", TypeNumber))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if col.Order != 2 {
		t.Errorf("Order = %d, want 2", col.Order)
	}
	if col.ID == "" {
		t.Error("expected generated id")
	}
	if col.Width != DefaultColumnWidth {
		t.Errorf("Width = %d, want %d", col.Width, DefaultColumnWidth)
	}
}

func TestSchemaAdd_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  Column
		want any
	}{
		{"duplicate field", NewColumn("a", "A", TypeString), &DuplicateFieldError{}},
		{"bad field", NewColumn("1abc", "X", TypeString), &InvalidColumnError{}},
		{"reserved id field", NewColumn("id", "ID", TypeString), &InvalidColumnError{}},
		{"empty field", NewColumn("", "X", TypeString), &InvalidColumnError{}},
		{"empty header", NewColumn("x", "", TypeString), &InvalidColumnError{}},
		{"unknown type", NewColumn("x", "X", ColumnType("money")), &InvalidColumnError{}},
		{"negative width", Column{Field: "x", HeaderName: "X", Width: -5}, &InvalidColumnError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSchema(t, "a")
			_, err := s.Add(tt.def)
			if err == nil {
				t.Fatal("Add() error = nil, want error")
			}
			if !errors.Is(err, ErrSchema) {
				t.Errorf("error %v does not match ErrSchema", err)
			}
			switch tt.want.(type) {
			case *DuplicateFieldError:
				var target *DuplicateFieldError
				if !errors.As(err, &target) {
					t.Errorf("error = %T, want *DuplicateFieldError", err)
				}
			case *InvalidColumnError:
				var target *InvalidColumnError
				if !errors.As(err, &target) {
					t.Errorf("error = %T, want *InvalidColumnError", err)
				}
			}
			if s.Len() != 1 {
				t.Errorf("Len() = %d after failed add, want 1", s.Len())
			}
		})
	}
}

func TestSchemaAdd_FieldIsCaseSensitive(t *testing.T) {
	s := newTestSchema(t, "name")
	if _, err := s.Add(NewColumn("Name", "Name", TypeString)); err != nil {
		t.Errorf("Add(Name) error = %v, want nil", err)
	}
}

func TestSchemaIDsNeverReused(t *testing.T) {
	s := NewSchema()
	def := NewColumn("a", "A", TypeString)
	def.ID = "fixed"
	if _, err := s.Add(def); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Remove("fixed"); err != nil {
		t.Fatal(err)
	}

	_, err := s.Add(def)
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("re-adding retired id: error = %v, want DuplicateIDError", err)
	}
}

func TestSchemaUpdate(t *testing.T) {
	s := newTestSchema(t, "a", "b")
	id := s.Columns()[0].ID

	header := "Alpha"
	col, err := s.Update(id, ColumnPatch{HeaderName: &header})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if col.HeaderName != "Alpha" || col.Field != "a" || col.Order != 0 {
		t.Errorf("Update() = %+v", col)
	}

	taken := "b"
	if _, err := s.Update(id, ColumnPatch{Field: &taken}); !errors.Is(err, ErrSchema) {
		t.Errorf("rename onto existing field: error = %v, want schema error", err)
	}

	if _, err := s.Update("missing", ColumnPatch{HeaderName: &header}); err == nil {
		t.Error("Update(missing) error = nil")
	}
}

func TestSchemaRemove_CompactsOrder(t *testing.T) {
	s := newTestSchema(t, "a", "b", "c", "d")
	id := s.Columns()[1].ID

	if _, err := s.Remove(id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	assertDenseOrder(t, s)

	got := s.Fields()
	want := []string{"a", "c", "d"}
	if !equalStrings(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}

	var nf *NotFoundError
	if _, err := s.Remove(id); !errors.As(err, &nf) {
		t.Errorf("second Remove() error = %v, want NotFoundError", err)
	}
}

func TestSchemaReorder(t *testing.T) {
	tests := []struct {
		name     string
		src, dst int
		want     []string
	}{
		{"move first to third", 0, 2, []string{"B", "C", "A", "D"}},
		{"move last to first", 3, 0, []string{"D", "A", "B", "C"}},
		{"adjacent swap", 1, 2, []string{"A", "C", "B", "D"}},
		{"no-op", 2, 2, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSchema(t, "A", "B", "C", "D")
			if err := s.Reorder(tt.src, tt.dst); err != nil {
				t.Fatalf("Reorder() error = %v", err)
			}
			if got := s.Fields(); !equalStrings(got, tt.want) {
				t.Errorf("Fields() = %v, want %v", got, tt.want)
			}
			assertDenseOrder(t, s)
		})
	}
}

func TestSchemaReorder_AllPairsStayDense(t *testing.T) {
	for src := 0; src < 5; src++ {
		for dst := 0; dst < 5; dst++ {
			s := newTestSchema(t, "a", "b", "c", "d", "e")
			if err := s.Reorder(src, dst); err != nil {
				t.Fatalf("Reorder(%d, %d) error = %v", src, dst, err)
			}
			assertDenseOrder(t, s)
			if got := s.Fields()[dst]; got != []string{"a", "b", "c", "d", "e"}[src] {
				t.Errorf("Reorder(%d, %d): position %d holds %q", src, dst, dst, got)
			}
		}
	}
}

func TestSchemaReorder_OutOfRange(t *testing.T) {
	s := newTestSchema(t, "a", "b")
	for _, pair := range [][2]int{{-1, 0}, {0, 2}, {2, 0}, {0, -1}} {
		var re *RangeError
		if err := s.Reorder(pair[0], pair[1]); !errors.As(err, &re) {
			t.Errorf("Reorder(%d, %d) error = %v, want RangeError", pair[0], pair[1], err)
		}
	}
}

func TestSchemaToggleVisibility(t *testing.T) {
	s := newTestSchema(t, "a")
	id := s.Columns()[0].ID

	col, err := s.ToggleVisibility(id)
	if err != nil || col.Visible {
		t.Fatalf("ToggleVisibility() = %+v, %v; want hidden", col, err)
	}
	if len(s.Visible()) != 0 {
		t.Errorf("Visible() = %v, want none", s.Visible())
	}
	col, _ = s.ToggleVisibility(id)
	if !col.Visible {
		t.Error("second toggle should show the column")
	}
}

func TestNewSchemaFrom_SortsAndRenumbers(t *testing.T) {
	cols := DefaultColumns()
	cols[0].Order, cols[5].Order = 9, -1

	s, err := newSchemaFrom(cols)
	if err != nil {
		t.Fatalf("newSchemaFrom() error = %v", err)
	}
	assertDenseOrder(t, s)
	fields := s.Fields()
	if fields[0] != "location" || fields[5] != "name" {
		t.Errorf("Fields() = %v", fields)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
