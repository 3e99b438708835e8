package web

import (
	"net/http"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/web/views"
)

// viewResponse is one page of the view plus the parameters that produced it.
type viewResponse struct {
	Query    core.Query  `json:"query"`
	Result   core.Result `json:"result"`
	Selected []string    `json:"selected"`
	Editing  []string    `json:"editing"`
}

// viewRequest changes the stored view state. Nil fields are left alone.
type viewRequest struct {
	Search    *string        `json:"search,omitempty"`
	Sort      *core.SortSpec `json:"sort,omitempty"`
	ClearSort bool           `json:"clearSort,omitempty"`
	Page      *int           `json:"page,omitempty"`
	PageSize  *int           `json:"pageSize,omitempty"`
}

// handleIndex renders the current view as an HTML page. Query parameters
// override the stored view for this request only.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var (
		data views.TableData
		err  error
	)
	s.session.Read(func(t *core.Table) {
		var q core.Query
		if q, err = queryOverrides(r, t.ViewState()); err != nil {
			return
		}
		if err = checkSort(t, q.Sort); err != nil {
			return
		}
		data = tableData(s.session.Name(), t, q)
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.TablePage(data).Render(r.Context(), w); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
	}
}

// handleGetView runs the query pipeline without changing view state.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	var (
		resp viewResponse
		err  error
	)
	s.session.Read(func(t *core.Table) {
		var q core.Query
		if q, err = queryOverrides(r, t.ViewState()); err != nil {
			return
		}
		if err = checkSort(t, q.Sort); err != nil {
			return
		}
		resp = viewResponse{Query: q, Result: t.Query(q), Selected: t.Selected(), Editing: t.Editing()}
	})
	if err != nil {
		respondErrorStatus(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePutView updates the stored search, sort and pagination.
func (s *Server) handlePutView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorStatus(w, r, err)
		return
	}

	var resp viewResponse
	err := s.session.Write(func(t *core.Table) error {
		if req.PageSize != nil {
			t.SetPageSize(*req.PageSize)
		}
		if req.Search != nil {
			t.SetSearch(*req.Search)
		}
		switch {
		case req.ClearSort:
			t.ClearSort()
		case req.Sort != nil:
			if err := t.SetSort(req.Sort.Field, req.Sort.Direction); err != nil {
				return err
			}
		}
		if req.Page != nil {
			t.SetPage(*req.Page)
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

func currentView(t *core.Table) viewResponse {
	return viewResponse{Query: t.ViewState(), Result: t.View(), Selected: t.Selected(), Editing: t.Editing()}
}

// checkSort rejects a sort on an unknown or unsortable field, mirroring
// Table.SetSort for one-off queries.
func checkSort(t *core.Table, spec *core.SortSpec) error {
	if spec == nil {
		return nil
	}
	for _, c := range t.Columns() {
		if c.Field != spec.Field {
			continue
		}
		if !c.Sortable {
			return &core.InvalidColumnError{Field: c.Field, Reason: "column is not sortable"}
		}
		return nil
	}
	return &core.NotFoundError{Entity: "column", ID: spec.Field}
}
