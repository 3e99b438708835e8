package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// Delimiters lists the accepted field separators.
var Delimiters = []rune{',', ';', '\t', '|'}

// Options controls parsing.
type Options struct {
	Delimiter rune     // one of Delimiters; zero means ','
	HasHeader bool     // first record names the fields
	Fields    []string // positional fields when HasHeader is false; nil means core.BuiltinFields
	MaxBytes  int64    // stream limit; zero means MaxFileSize, negative disables
	Clean     bool     // strip Excel formula prefixes, quotes and padding from cells
}

// DefaultOptions returns comma-delimited, headered parsing.
func DefaultOptions() Options {
	return Options{Delimiter: ',', HasHeader: true}
}

// ParseDelimiter maps a user-facing delimiter ("," ";" "tab" "\t" "|")
// to a rune.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "", ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("invalid delimiter %q: use one of , ; tab |", s)
}

func (o Options) delimiter() (rune, error) {
	if o.Delimiter == 0 {
		return ',', nil
	}
	for _, d := range Delimiters {
		if o.Delimiter == d {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid delimiter %q: use one of , ; tab |", o.Delimiter)
}

func (o Options) maxBytes() int64 {
	if o.MaxBytes == 0 {
		return MaxFileSize
	}
	return o.MaxBytes
}

// ImportResult is the outcome of parsing: candidate rows and accumulated
// per-row problems. Rows with problems are still included.
type ImportResult struct {
	Rows   []core.Row         `json:"rows"`
	Errors []core.ImportError `json:"errors"`
	Fields []string           `json:"fields"` // sanitized header fields in file order
}

// Err joins the import problems into one error, nil when there are none.
func (r ImportResult) Err() error { return core.ImportErrors(r.Errors) }

// ValidCount returns how many rows have no problems.
func (r ImportResult) ValidCount() int {
	bad := make(map[int]struct{}, len(r.Errors))
	for _, e := range r.Errors {
		bad[e.Row] = struct{}{}
	}
	return len(r.Rows) - len(bad)
}

// ParseCSV reads delimited text into candidate rows. The context is checked
// between records so an abandoned import stops early.
func ParseCSV(ctx context.Context, r io.Reader, opts Options) (ImportResult, error) {
	delim, err := opts.delimiter()
	if err != nil {
		return ImportResult{}, err
	}

	cr := csv.NewReader(NewDecodingReader(newLimitReader(r, opts.maxBytes())))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		result  ImportResult
		columns []string // field per position, "" to skip
		index   int
	)

	if opts.HasHeader {
		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ImportResult{}, ErrEmptyFile
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("read header: %w", err)
		}
		columns, result.Fields = headerFields(header)
	} else {
		columns = opts.Fields
		if columns == nil {
			columns = core.BuiltinFields
		}
		result.Fields = append([]string(nil), columns...)
	}

	for {
		if err := ctx.Err(); err != nil {
			return ImportResult{}, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("read record %d: %w", index+1, err)
		}
		index++

		cells := make(map[string]core.Value, len(record))
		for pos, raw := range record {
			field := positionalField(columns, pos, opts.HasHeader)
			if field == "" {
				continue
			}
			if _, dup := cells[field]; dup {
				continue
			}
			if opts.Clean {
				raw = core.CleanCell(raw)
			}
			cells[field] = core.StringValue(raw)
		}

		row, problems := buildRow(index, cells)
		result.Rows = append(result.Rows, row)
		result.Errors = append(result.Errors, problems...)
	}

	if index == 0 {
		return ImportResult{}, ErrEmptyFile
	}
	return result, nil
}

// headerFields sanitizes header cells. Cells that sanitize to nothing, and
// repeats of an earlier field, map to "" and are ignored.
func headerFields(header []string) (columns, fields []string) {
	columns = make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		f := core.SanitizeFieldName(h)
		if f == "" || f == core.IDKey {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		columns[i] = f
		fields = append(fields, f)
	}
	return columns, fields
}

func positionalField(columns []string, pos int, hasHeader bool) string {
	if pos < len(columns) {
		return columns[pos]
	}
	if hasHeader {
		return ""
	}
	return "field_" + strconv.Itoa(pos+1)
}

// buildRow maps the built-in fields with defaults, carries every other
// cell through verbatim and reports import problems for row index.
func buildRow(index int, cells map[string]core.Value) (core.Row, []core.ImportError) {
	var problems []core.ImportError
	fail := func(field, msg string) {
		problems = append(problems, core.ImportError{Row: index, Field: field, Message: msg})
	}

	text := func(field string) string { return cells[field].String() }

	fields := make(map[string]core.Value, len(cells)+len(core.BuiltinFields))
	for k, v := range cells {
		fields[k] = v
	}
	for _, f := range []string{"name", "email", "role", "department", "location"} {
		fields[f] = core.StringValue(text(f))
	}

	if text("name") == "" {
		fail("name", "Name is required")
	}
	switch email := text("email"); {
	case email == "":
		fail("email", "Email is required")
	case !core.IsValidEmail(email):
		fail("email", "Invalid email format")
	}

	age := cells["age"]
	switch {
	case age.Kind() == core.KindNumber:
		fields["age"] = age
	case age.IsEmpty():
		fields["age"] = core.NumberValue(0)
	default:
		n, ok := core.ParseNumber(age.String())
		if !ok {
			fail("age", "Age must be a number")
		}
		fields["age"] = core.NumberValue(n)
	}

	return core.NewRow(core.NewRowID(), fields), problems
}
