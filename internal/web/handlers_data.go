package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/csvio"
	"github.com/JonMunkholm/gridkit/internal/logging"
)

// exportScope picks which rows an export contains.
type exportScope string

const (
	scopeAll      exportScope = "all"      // every row in store order
	scopeView     exportScope = "view"     // search and sort applied, every page
	scopePage     exportScope = "page"     // the current page only
	scopeSelected exportScope = "selected" // selected rows in store order
)

func parseScope(s string) (exportScope, error) {
	switch exportScope(strings.ToLower(s)) {
	case "", scopeAll:
		return scopeAll, nil
	case scopeView:
		return scopeView, nil
	case scopePage:
		return scopePage, nil
	case scopeSelected:
		return scopeSelected, nil
	}
	return "", fmt.Errorf("%w: scope must be all, view, page or selected", errBadRequest)
}

// scopedRows returns the rows for scope. Call inside Session.Read.
func scopedRows(t *core.Table, scope exportScope) []core.Row {
	switch scope {
	case scopeView:
		q := t.ViewState()
		q.Page, q.PageSize = 0, 0
		return t.Query(q).Rows
	case scopePage:
		return t.View().Rows
	case scopeSelected:
		sel := toSet(t.Selected())
		var rows []core.Row
		for _, r := range t.Rows() {
			if sel[r.ID] {
				rows = append(rows, r)
			}
		}
		return rows
	}
	return t.Rows()
}

// handleExport downloads the table as CSV or JSON.
//
// Query: format (csv|json), filename (without extension), scope,
// visibleOnly and headers (both default true).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := csvio.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	name := r.URL.Query().Get("filename")
	if name == "" {
		name = defaultExportName(s.session.Name())
	}
	filename, err := csvio.ExportFilename(name, format)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	scope, err := parseScope(r.URL.Query().Get("scope"))
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	opts := csvio.DefaultExportOptions()
	if opts.VisibleOnly, err = parseBoolParam(r, "visibleOnly", true); err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	if opts.Header, err = parseBoolParam(r, "headers", true); err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	var (
		buf  bytes.Buffer
		rows int
	)
	s.session.Read(func(t *core.Table) {
		data := scopedRows(t, scope)
		rows = len(data)
		err = csvio.Write(&buf, format, data, t.Columns(), opts)
	})
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("table exported",
		"format", format,
		"scope", scope,
		"rows", rows,
	)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

// defaultExportName falls back to "export" when the session name would not
// pass filename validation.
func defaultExportName(session string) string {
	if _, err := csvio.ExportFilename(session, csvio.FormatCSV); err == nil {
		return session
	}
	return "export"
}

// handleSample downloads a small CSV in the default column layout.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", csvio.FormatCSV.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvio.SampleFilename))
	w.Write([]byte(csvio.SampleCSV()))
}

// handleGetSnapshot returns the persistable columns and rows.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handlePutSnapshot replaces the whole table. Nothing changes when the
// snapshot is malformed.
func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if err := decodeJSON(w, r, &snap); err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	var resp viewResponse
	err := s.session.Write(func(t *core.Table) error {
		if err := t.Restore(snap); err != nil {
			return err
		}
		resp = currentView(t)
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
