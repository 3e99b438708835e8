package web

// handlers_common.go holds request parsing helpers shared across handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/web/views"
)

// maxJSONBody caps JSON request bodies. Snapshots are the largest.
const maxJSONBody = 10 << 20

// errBadRequest marks malformed requests. Its text matches the
// "invalid request body" user message.
var errBadRequest = errors.New("invalid request body")

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parseIntParam parses an integer query parameter. Missing values yield
// def; malformed ones are an error.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return def, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return i, nil
}

// parseBoolParam parses a boolean query or form parameter.
func parseBoolParam(r *http.Request, name string, def bool) (bool, error) {
	val := r.FormValue(name)
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", errBadRequest, name)
	}
	return b, nil
}

// queryOverrides applies search, sort, dir, page and pageSize query
// parameters on top of base. An empty sort parameter keeps base.Sort;
// "none" clears it.
func queryOverrides(r *http.Request, base core.Query) (core.Query, error) {
	q := r.URL.Query()
	if _, ok := q["search"]; ok {
		base.Search = q.Get("search")
		base.Page = 0
	}
	switch field := strings.TrimSpace(q.Get("sort")); field {
	case "":
	case "none":
		base.Sort = nil
	default:
		base.Sort = &core.SortSpec{Field: field, Direction: core.ParseSortDirection(q.Get("dir"))}
	}

	var err error
	if base.Page, err = parseIntParam(r, "page", base.Page); err != nil {
		return base, err
	}
	if base.PageSize, err = parseIntParam(r, "pageSize", base.PageSize); err != nil {
		return base, err
	}
	if base.Page < 0 {
		base.Page = 0
	}
	return base, nil
}

// tableData gathers what the HTML view needs. Call inside Session.Read.
func tableData(title string, t *core.Table, q core.Query) views.TableData {
	d := views.TableData{
		Title:    title,
		Columns:  t.VisibleColumns(),
		Result:   t.Query(q),
		Search:   q.Search,
		Sort:     q.Sort,
		Selected: toSet(t.Selected()),
		Editing:  toSet(t.Editing()),
	}
	if in, ok := t.Pending(); ok {
		d.Pending = &in
	}
	return d
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// cutPort splits host:port; ok is false for a bare host.
func cutPort(addr string) (host, port string, ok bool) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, "", false
	}
	return host, port, true
}
