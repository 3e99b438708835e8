// Package views renders the HTML surface: the table page and the HTMX
// partials returned for errors and import previews.
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// TableData is everything the table page shows.
type TableData struct {
	Title    string
	Columns  []core.Column // visible, in order
	Result   core.Result
	Search   string
	Sort     *core.SortSpec
	Selected map[string]bool
	Editing  map[string]bool
	Pending  *core.Intent
}

// writer accumulates the first write error so components read linearly.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) { w.raw(templ.EscapeString(s)) }

func (w *writer) rawf(format string, args ...any) { w.raw(fmt.Sprintf(format, args...)) }

// ErrorAlert is the HTMX error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		w.text(message)
		w.raw(`</p>`)
		if action != "" {
			w.raw(`<p class="alert-action">`)
			w.text(action)
			w.raw(`</p>`)
		}
		if code != "" {
			w.raw(`<p class="alert-code">Code: `)
			w.text(code)
			w.raw(`</p>`)
		}
		w.raw(`</div>`)
		return w.err
	})
}

// ImportReport summarizes a parsed file and lists its problems.
func ImportReport(total, valid int, problems []core.ImportError) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.rawf(`<div class="import-report"><p>%d row(s) read, %d valid.</p>`, total, valid)
		if len(problems) > 0 {
			w.raw(`<ul class="import-errors">`)
			for _, p := range problems {
				w.raw(`<li>`)
				w.text(fmt.Sprintf("Row %d, %s: %s", p.Row, p.Field, p.Message))
				w.raw(`</li>`)
			}
			w.raw(`</ul>`)
		}
		w.raw(`</div>`)
		return w.err
	})
}

// TablePage renders a full HTML document around Table.
func TablePage(d TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		w.text(d.Title)
		w.raw(`</title></head><body><main><h1>`)
		w.text(d.Title)
		w.raw(`</h1>`)
		if w.err != nil {
			return w.err
		}
		if err := Table(d).Render(ctx, out); err != nil {
			return err
		}
		w.raw(`</main></body></html>`)
		return w.err
	})
}

// Table renders the current page, its header and the pager.
func Table(d TableData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		w := &writer{w: out}

		w.raw(`<section id="grid">`)
		w.raw(`<form class="search" method="get" action="/"><input type="search" name="search" placeholder="Search..." value="`)
		w.text(d.Search)
		w.raw(`"></form>`)

		if d.Pending != nil {
			w.raw(`<div class="pending" data-kind="`)
			w.text(string(d.Pending.Kind))
			w.raw(`">Confirmation pending</div>`)
		}

		if len(d.Columns) == 0 {
			w.raw(`<p class="empty">No columns defined.</p></section>`)
			return w.err
		}

		w.raw(`<table><thead><tr><th></th>`)
		for _, c := range d.Columns {
			w.rawf(`<th data-field="%s" style="width:%dpx">`, templ.EscapeString(c.Field), c.Width)
			w.text(c.HeaderName)
			if d.Sort != nil && d.Sort.Field == c.Field {
				if d.Sort.Direction == core.Desc {
					w.raw(` &#9660;`)
				} else {
					w.raw(` &#9650;`)
				}
			}
			w.raw(`</th>`)
		}
		w.raw(`</tr></thead><tbody>`)

		if len(d.Result.Rows) == 0 {
			w.rawf(`<tr><td colspan="%d" class="empty">No rows found.</td></tr>`, len(d.Columns)+1)
		}
		for _, r := range d.Result.Rows {
			var classes []string
			if d.Selected[r.ID] {
				classes = append(classes, "selected")
			}
			if d.Editing[r.ID] {
				classes = append(classes, "editing")
			}
			w.raw(`<tr data-id="`)
			w.text(r.ID)
			w.raw(`"`)
			if len(classes) > 0 {
				w.rawf(` class="%s"`, strings.Join(classes, " "))
			}
			w.raw(`><td><input type="checkbox"`)
			if d.Selected[r.ID] {
				w.raw(` checked`)
			}
			w.raw(`></td>`)
			for _, c := range d.Columns {
				w.raw(`<td>`)
				w.text(r.Value(c.Field).String())
				w.raw(`</td>`)
			}
			w.raw(`</tr>`)
		}
		w.raw(`</tbody></table>`)

		w.raw(`<nav class="pager">`)
		w.text(pagerText(d.Result))
		w.raw(`</nav></section>`)
		return w.err
	})
}

func pagerText(r core.Result) string {
	if r.Total == 0 {
		return "0 rows"
	}
	pages := r.PageCount
	if pages == 0 {
		pages = 1
	}
	return "Page " + strconv.Itoa(r.Page+1) + " of " + strconv.Itoa(pages) + " (" + strconv.Itoa(r.Total) + " rows)"
}
