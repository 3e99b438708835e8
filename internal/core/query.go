package core

import (
	"sort"
	"strings"
)

// Run executes search, then sort, then pagination. It never mutates its
// inputs; the returned rows are copies.
func Run(rows []Row, q Query) Result {
	filtered := Search(rows, q.Search)
	if q.Sort != nil && q.Sort.Field != "" {
		filtered = SortRows(filtered, *q.Sort)
	}

	page, size := q.Page, q.PageSize
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 0
		page = 0
	}

	pageRows := Paginate(filtered, page, size)
	out := make([]Row, len(pageRows))
	for i, r := range pageRows {
		out[i] = r.Clone()
	}

	return Result{
		Rows:      out,
		Total:     len(filtered),
		Page:      page,
		PageSize:  size,
		PageCount: PageCount(len(filtered), size),
	}
}

// Search keeps rows where any value, including the id, contains term
// case-insensitively. An empty term keeps every row. The result shares
// row values with the input.
func Search(rows []Row, term string) []Row {
	if term == "" {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out
	}

	needle := strings.ToLower(term)
	var out []Row
	for _, r := range rows {
		if rowMatches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(r Row, needle string) bool {
	if strings.Contains(strings.ToLower(r.ID), needle) {
		return true
	}
	for _, v := range r.Fields {
		if strings.Contains(strings.ToLower(v.String()), needle) {
			return true
		}
	}
	return false
}

// SortRows returns a stably sorted copy ordered by the lowercased string
// form of spec.Field. Desc reverses the comparison, so equal keys keep
// their input order in both directions.
func SortRows(rows []Row, spec SortSpec) []Row {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = strings.ToLower(r.Value(spec.Field).String())
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if spec.Direction == Desc {
			return ka > kb
		}
		return ka < kb
	})

	out := make([]Row, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

// Paginate returns rows[page*size : page*size+size], clamped. A page past
// the end is empty. size <= 0 returns everything.
func Paginate(rows []Row, page, size int) []Row {
	if size <= 0 {
		return rows
	}
	if page < 0 {
		return []Row{}
	}
	start := page * size
	if start >= len(rows) {
		return []Row{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageCount returns the number of pages needed for total rows.
func PageCount(total, size int) int {
	if size <= 0 {
		if total == 0 {
			return 0
		}
		return 1
	}
	return (total + size - 1) / size
}
