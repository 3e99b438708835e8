package csvio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid export format %q: use csv or json", s)
}

// ContentType returns the MIME type for downloads.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

var exportNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\s]+$`)

// ExportFilename validates a user-chosen name and appends the extension.
func ExportFilename(name string, f Format) (string, error) {
	if name == "" || len(name) > 50 {
		return "", fmt.Errorf("invalid export filename: must be 1 to 50 characters")
	}
	if !exportNameRegex.MatchString(name) {
		return "", fmt.Errorf("invalid export filename %q: use letters, numbers, spaces, hyphens, and underscores", name)
	}
	return name + "." + string(f), nil
}

// ExportOptions selects columns and the CSV header row.
type ExportOptions struct {
	VisibleOnly bool
	Header      bool // CSV only
}

// DefaultExportOptions exports visible columns with a header row.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{VisibleOnly: true, Header: true}
}

// SelectColumns filters to visible columns when asked and sorts by Order.
func SelectColumns(cols []core.Column, visibleOnly bool) []core.Column {
	out := make([]core.Column, 0, len(cols))
	for _, c := range cols {
		if visibleOnly && !c.Visible {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// WriteCSV writes rows with one column per selected column. The header
// row holds HeaderNames; missing fields are written as "".
func WriteCSV(w io.Writer, rows []core.Row, cols []core.Column, opts ExportOptions) error {
	cols = SelectColumns(cols, opts.VisibleOnly)

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if opts.Header {
		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = c.HeaderName
		}
		if err := cw.Write(header); err != nil {
			return err
		}
	}

	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i] = r.Value(c.Field).String()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes a pretty-printed array of objects keyed by field, in
// column order. Values keep their natural JSON type; missing fields are
// omitted.
func WriteJSON(w io.Writer, rows []core.Row, cols []core.Column, opts ExportOptions) error {
	cols = SelectColumns(cols, opts.VisibleOnly)

	objects := make([]orderedRow, len(rows))
	for i, r := range rows {
		objects[i] = orderedRow{row: r, cols: cols}
	}

	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// orderedRow marshals a row's selected fields in column order.
type orderedRow struct {
	row  core.Row
	cols []core.Column
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, c := range o.cols {
		v, ok := o.row.Get(c.Field)
		if !ok {
			continue
		}
		key, err := json.Marshal(c.Field)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Write dispatches on format.
func Write(w io.Writer, f Format, rows []core.Row, cols []core.Column, opts ExportOptions) error {
	if f == FormatJSON {
		return WriteJSON(w, rows, cols, opts)
	}
	return WriteCSV(w, rows, cols, opts)
}
