package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// errInvalidRow is returned when a commit fails validation. The response
// body lists each field problem.
var errInvalidRow = errors.New("row has invalid values")

type idsRequest struct {
	IDs []string `json:"ids"`
}

type selectionResponse struct {
	Selected []string `json:"selected"`
}

type draftResponse struct {
	ID    string                `json:"id"`
	Draft map[string]core.Value `json:"draft"`
}

// Rows

// handleAddRow adds the posted row, or a blank row in edit mode when the
// body is empty.
func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	var (
		in    core.Row
		blank = r.ContentLength == 0
	)
	if !blank {
		if err := decodeJSON(w, r, &in); err != nil {
			respondErrorStatus(w, r, err)
			return
		}
	}

	var row core.Row
	err := s.session.Write(func(t *core.Table) error {
		var err error
		if blank {
			row, err = t.AddBlankRow()
		} else {
			row, err = t.AddRow(in)
		}
		return err
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

// handleUpdateRow merges the posted fields into a stored row.
func (s *Server) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var partial map[string]core.Value
	if err := decodeJSON(w, r, &partial); err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	delete(partial, core.IDKey)

	var row core.Row
	err := s.session.Write(func(t *core.Table) error {
		if !t.UpdateRow(id, partial) {
			return &core.NotFoundError{Entity: "row", ID: id}
		}
		row, _ = t.Row(id)
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleDeleteRow removes one row immediately. Clients wanting a
// confirmation step go through /api/confirm/propose instead.
func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.session.Write(func(t *core.Table) error {
		if !t.DeleteRow(id) {
			return &core.NotFoundError{Entity: "row", ID: id}
		}
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRows removes the listed rows, or the selection when no ids
// are given.
func (s *Server) handleDeleteRows(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondErrorStatus(w, r, err)
			return
		}
	}

	var n int
	err := s.session.Write(func(t *core.Table) error {
		ids := req.IDs
		if len(ids) == 0 {
			ids = t.Selected()
		}
		if len(ids) == 0 {
			return core.ErrEmptySelection
		}
		n = t.DeleteRows(ids)
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// Editing

func (s *Server) handleStartEditing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var resp draftResponse
	err := s.session.Write(func(t *core.Table) error {
		if err := t.StartEditing(id); err != nil {
			return err
		}
		resp.ID = id
		resp.Draft, _ = t.Draft(id)
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetDraft writes the posted values into the row's draft without
// validating them.
func (s *Server) handleSetDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var values map[string]core.Value
	if err := decodeJSON(w, r, &values); err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	var resp draftResponse
	err := s.session.Write(func(t *core.Table) error {
		if !t.IsEditing(id) {
			if _, ok := t.Row(id); !ok {
				return &core.NotFoundError{Entity: "row", ID: id}
			}
			return fmt.Errorf("%w: %s", core.ErrNotEditing, id)
		}
		for field, v := range values {
			if err := t.SetDraftValue(id, field, v); err != nil {
				return err
			}
		}
		resp.ID = id
		resp.Draft, _ = t.Draft(id)
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCommitEditing validates and saves the draft, overlaid with any
// posted values. Validation problems come back as 422 with the row still
// in edit mode.
func (s *Server) handleCommitEditing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var values map[string]core.Value
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &values); err != nil {
			respondErrorStatus(w, r, err)
			return
		}
	}

	var (
		row      core.Row
		problems []core.ValidationError
	)
	err := s.session.Write(func(t *core.Table) error {
		var err error
		if problems, err = t.CommitEditing(id, values); err != nil {
			return err
		}
		row, _ = t.Row(id)
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	if len(problems) > 0 {
		writeError(w, r, errInvalidRow, http.StatusUnprocessableEntity, ErrorResponse{Validation: problems})
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleCancelEditing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.session.Write(func(t *core.Table) error {
		t.CancelEditing(id)
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleCommitAll commits every editing row. Rows that fail stay in edit
// mode and are reported by id.
func (s *Server) handleCommitAll(w http.ResponseWriter, r *http.Request) {
	var (
		committed int
		failed    map[string][]core.ValidationError
	)
	s.session.Write(func(t *core.Table) error {
		before := len(t.Editing())
		failed = t.CommitAll()
		committed = before - len(t.Editing())
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]any{"committed": committed, "failed": failed})
}

func (s *Server) handleCancelAll(w http.ResponseWriter, r *http.Request) {
	s.session.Write(func(t *core.Table) error {
		t.CancelAll()
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// Selection

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	s.updateSelection(w, r, func(t *core.Table) error {
		t.SetSelected(req.IDs)
		return nil
	})
}

func (s *Server) handleToggleSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.updateSelection(w, r, func(t *core.Table) error {
		if _, ok := t.Row(id); !ok {
			return &core.NotFoundError{Entity: "row", ID: id}
		}
		t.ToggleSelected(id)
		return nil
	})
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	s.updateSelection(w, r, func(t *core.Table) error {
		t.SelectAll()
		return nil
	})
}

func (s *Server) handleSelectPage(w http.ResponseWriter, r *http.Request) {
	s.updateSelection(w, r, func(t *core.Table) error {
		t.SelectPage()
		return nil
	})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.updateSelection(w, r, func(t *core.Table) error {
		t.ClearSelection()
		return nil
	})
}

// updateSelection runs fn and responds with the resulting selection.
func (s *Server) updateSelection(w http.ResponseWriter, r *http.Request, fn func(t *core.Table) error) {
	resp := selectionResponse{Selected: []string{}}
	err := s.session.Write(func(t *core.Table) error {
		if err := fn(t); err != nil {
			return err
		}
		if sel := t.Selected(); sel != nil {
			resp.Selected = sel
		}
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Columns

// columnRequest is a new column definition. Omitted flags default to a
// visible, sortable, editable, optional column.
type columnRequest struct {
	ID string `json:"id,omitempty"`
	core.ColumnPatch
}

func (req columnRequest) column() core.Column {
	p := req.ColumnPatch
	c := core.NewColumn(deref(p.Field), deref(p.HeaderName), deref(p.Type))
	c.ID = req.ID
	if p.Width != nil {
		c.Width = *p.Width
	}
	if p.Visible != nil {
		c.Visible = *p.Visible
	}
	if p.Sortable != nil {
		c.Sortable = *p.Sortable
	}
	if p.Editable != nil {
		c.Editable = *p.Editable
	}
	if p.Required != nil {
		c.Required = *p.Required
	}
	return c
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	var cols []core.Column
	s.session.Read(func(t *core.Table) { cols = t.Columns() })
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	var req columnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	s.updateColumn(w, r, http.StatusCreated, func(t *core.Table) (core.Column, error) {
		return t.AddColumn(req.column())
	})
}

func (s *Server) handleUpdateColumn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch core.ColumnPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	s.updateColumn(w, r, http.StatusOK, func(t *core.Table) (core.Column, error) {
		return t.UpdateColumn(id, patch)
	})
}

// handleDeleteColumn removes a column and its data immediately.
func (s *Server) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.updateColumn(w, r, http.StatusOK, func(t *core.Table) (core.Column, error) {
		return t.DeleteColumn(id)
	})
}

func (s *Server) handleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.updateColumn(w, r, http.StatusOK, func(t *core.Table) (core.Column, error) {
		return t.ToggleColumnVisibility(id)
	})
}

func (s *Server) updateColumn(w http.ResponseWriter, r *http.Request, status int, fn func(t *core.Table) (core.Column, error)) {
	var col core.Column
	err := s.session.Write(func(t *core.Table) error {
		var err error
		col, err = fn(t)
		return err
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, status, col)
}

// handleReorderColumns moves the column at index from to index to and
// returns the new column order.
func (s *Server) handleReorderColumns(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	var cols []core.Column
	err := s.session.Write(func(t *core.Table) error {
		if err := t.ReorderColumns(req.From, req.To); err != nil {
			return err
		}
		cols = t.Columns()
		return nil
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cols)
}

// handleFieldName suggests a field name for a column header.
func (s *Server) handleFieldName(w http.ResponseWriter, r *http.Request) {
	field := core.SanitizeFieldName(r.URL.Query().Get("header"))
	writeJSON(w, http.StatusOK, map[string]any{
		"field": field,
		"valid": core.ValidFieldName(field),
	})
}

// Confirmation

// handlePropose stores a destructive action and returns the text to show
// before it is confirmed.
func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	var in core.Intent
	if err := decodeJSON(w, r, &in); err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	switch in.Kind {
	case core.IntentDeleteRow, core.IntentDeleteRows, core.IntentDeleteColumn, core.IntentCancelAllEdits:
	default:
		respondError(w, r, fmt.Errorf("%w: unknown intent %q", errBadRequest, in.Kind), http.StatusBadRequest)
		return
	}

	var c core.Confirmation
	err := s.session.Write(func(t *core.Table) error {
		var err error
		c, err = t.Propose(in)
		return err
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleConfirm applies the pending action.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var in core.Intent
	err := s.session.Write(func(t *core.Table) error {
		var err error
		in, err = t.Confirm()
		return err
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": in})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.session.Write(func(t *core.Table) error {
		t.Dismiss()
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}
