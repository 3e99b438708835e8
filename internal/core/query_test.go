package core

import (
	"strings"
	"testing"
)

func people() []Row {
	return []Row{
		NewRow("r1", map[string]Value{"name": StringValue("bob"), "team": StringValue("x")}),
		NewRow("r2", map[string]Value{"name": StringValue("Alice"), "team": StringValue("y")}),
		NewRow("r3", map[string]Value{"name": StringValue("carol"), "team": StringValue("x")}),
		NewRow("r4", map[string]Value{"name": StringValue("Dave"), "team": StringValue("y")}),
		NewRow("r5", map[string]Value{"name": StringValue("eve"), "age": NumberValue(41)}),
	}
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty keeps all", "", []string{"r1", "r2", "r3", "r4", "r5"}},
		{"case insensitive", "ALICE", []string{"r2"}},
		{"substring across rows", "a", []string{"r2", "r3", "r4"}},
		{"matches numbers as text", "41", []string{"r5"}},
		{"matches the id", "r3", []string{"r3"}},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Search(people(), tt.term))
			if !equalStrings(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("Search(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestSearch_IsAFilter(t *testing.T) {
	rows := people()
	for _, term := range []string{"a", "E", "x", "r", "41", "nothing"} {
		got := Search(rows, term)
		if len(got) > len(rows) {
			t.Fatalf("Search(%q) grew the set", term)
		}
		for _, r := range got {
			if !rowMatches(r, strings.ToLower(term)) {
				t.Errorf("Search(%q) returned non-matching row %s", term, r.ID)
			}
		}
	}
}

func TestSortRows(t *testing.T) {
	asc := SortRows(people(), SortSpec{Field: "name", Direction: Asc})
	if got, want := ids(asc), []string{"r2", "r1", "r3", "r4", "r5"}; !equalStrings(got, want) {
		t.Errorf("asc = %v, want %v", got, want)
	}

	desc := SortRows(people(), SortSpec{Field: "name", Direction: Desc})
	if got, want := ids(desc), []string{"r5", "r4", "r3", "r1", "r2"}; !equalStrings(got, want) {
		t.Errorf("desc = %v, want %v", got, want)
	}
}

func TestSortRows_StableForDuplicateKeys(t *testing.T) {
	rows := people()

	// r5 has no team and sorts as the empty string.
	asc := ids(SortRows(rows, SortSpec{Field: "team", Direction: Asc}))
	if want := []string{"r5", "r1", "r3", "r2", "r4"}; !equalStrings(asc, want) {
		t.Errorf("asc = %v, want %v", asc, want)
	}

	desc := ids(SortRows(rows, SortSpec{Field: "team", Direction: Desc}))
	if want := []string{"r2", "r4", "r1", "r3", "r5"}; !equalStrings(desc, want) {
		t.Errorf("desc = %v, want %v", desc, want)
	}
}

func TestSortRows_DoesNotMutateInput(t *testing.T) {
	rows := people()
	SortRows(rows, SortSpec{Field: "name", Direction: Asc})
	if got := ids(rows); !equalStrings(got, []string{"r1", "r2", "r3", "r4", "r5"}) {
		t.Errorf("input reordered: %v", got)
	}
}

func TestPaginate_PagesReconstructSequence(t *testing.T) {
	rows := people()
	for size := 1; size <= 6; size++ {
		var all []string
		for page := 0; page < PageCount(len(rows), size); page++ {
			p := Paginate(rows, page, size)
			if len(p) == 0 || len(p) > size {
				t.Fatalf("size %d page %d has %d rows", size, page, len(p))
			}
			all = append(all, ids(p)...)
		}
		if !equalStrings(all, ids(rows)) {
			t.Errorf("size %d: pages = %v", size, all)
		}
	}
}

func TestPaginate_OutOfRange(t *testing.T) {
	if got := Paginate(people(), 10, 2); len(got) != 0 {
		t.Errorf("Paginate past end = %v, want empty", ids(got))
	}
	if got := Paginate(people(), 0, 0); len(got) != 5 {
		t.Errorf("Paginate size 0 = %d rows, want 5", len(got))
	}
}

func TestRun(t *testing.T) {
	res := Run(people(), Query{
		Search:   "a",
		Sort:     &SortSpec{Field: "name", Direction: Desc},
		Page:     1,
		PageSize: 2,
	})

	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
	if res.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", res.PageCount)
	}
	// filtered: r2 Alice, r3 carol, r4 Dave; desc by name: dave, carol, alice
	if got := ids(res.Rows); !equalStrings(got, []string{"r2"}) {
		t.Errorf("Rows = %v, want [r2]", got)
	}
}

func TestRun_FilterShrinksBelowPage(t *testing.T) {
	res := Run(people(), Query{Search: "eve", Page: 3, PageSize: 2})
	if len(res.Rows) != 0 || res.Total != 1 {
		t.Errorf("Run() = %d rows, total %d; want 0 rows, total 1", len(res.Rows), res.Total)
	}
}
