package csvio

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gridkit/internal/core"
)

func parse(t *testing.T, input string, opts Options) ImportResult {
	t.Helper()
	res, err := ParseCSV(context.Background(), strings.NewReader(input), opts)
	require.NoError(t, err)
	return res
}

func TestParseCSV_MissingEmailIsReported(t *testing.T) {
	input := "Name,Email,Age\n" +
		"Ann,ann@example.com,41\n" +
		"Bob,,35\n" +
		"Cy,cy@example.com,29\n"

	res := parse(t, input, DefaultOptions())

	require.Len(t, res.Rows, 3)
	assert.Equal(t, []core.ImportError{{Row: 2, Field: "email", Message: "Email is required"}}, res.Errors)
	assert.Equal(t, 2, res.ValidCount())
	assert.Equal(t, []string{"name", "email", "age"}, res.Fields)

	assert.Equal(t, "Ann", res.Rows[0].Value("name").String())
	assert.Equal(t, core.NumberValue(41), res.Rows[0].Value("age"))
	assert.Equal(t, core.StringValue(""), res.Rows[1].Value("email"))
	assert.Equal(t, core.StringValue(""), res.Rows[0].Value("location"), "built-in fields default to empty")

	assert.Error(t, res.Err())
	assert.Contains(t, res.Err().Error(), "row 2: email: Email is required")
}

func TestParseCSV_RowChecks(t *testing.T) {
	input := "name,email,age\n" +
		",nobody@example.com,\n" +
		"Eve,not-an-email,30\n" +
		"Mo,mo@example.com,abc\n"

	res := parse(t, input, DefaultOptions())

	assert.Equal(t, []core.ImportError{
		{Row: 1, Field: "name", Message: "Name is required"},
		{Row: 2, Field: "email", Message: "Invalid email format"},
		{Row: 3, Field: "age", Message: "Age must be a number"},
	}, res.Errors)
	assert.Equal(t, core.NumberValue(0), res.Rows[0].Value("age"), "empty age defaults to 0")
	assert.Equal(t, 0, res.ValidCount())
}

func TestParseCSV_UniqueRowIDs(t *testing.T) {
	res := parse(t, SampleCSV(), DefaultOptions())

	seen := map[string]bool{}
	for _, r := range res.Rows {
		require.NotEmpty(t, r.ID)
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestParseCSV_HeaderHandling(t *testing.T) {
	input := "Full Name,Email,Email,id,???,Annual Salary\n" +
		"Ann,ann@example.com,dup@example.com,99,x,50000\n"

	res := parse(t, input, DefaultOptions())

	assert.Equal(t, []string{"full_name", "email", "annual_salary"}, res.Fields)
	row := res.Rows[0]
	assert.Equal(t, "ann@example.com", row.Value("email").String(), "first duplicate header wins")
	assert.Equal(t, "50000", row.Value("annual_salary").String(), "extra columns are carried verbatim")
	assert.NotEqual(t, "99", row.ID, "an id column never overrides the generated id")
	assert.False(t, row.Has("id"))
}

func TestParseCSV_Delimiters(t *testing.T) {
	tests := []struct {
		name  string
		delim rune
		input string
	}{
		{"semicolon", ';', "Name;Email\nAnn;ann@example.com\n"},
		{"tab", '\t', "Name\tEmail\nAnn\tann@example.com\n"},
		{"pipe", '|', "Name|Email\nAnn|ann@example.com\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Delimiter = tt.delim
			res := parse(t, tt.input, opts)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, "Ann", res.Rows[0].Value("name").String())
			assert.Equal(t, "ann@example.com", res.Rows[0].Value("email").String())
		})
	}

	_, err := ParseCSV(context.Background(), strings.NewReader("a\n"), Options{Delimiter: '#', HasHeader: true})
	assert.ErrorContains(t, err, "invalid delimiter")
}

func TestParseDelimiter(t *testing.T) {
	for in, want := range map[string]rune{"": ',', ",": ',', ";": ';', "tab": '\t', `\t`: '\t', "|": '|'} {
		got, err := ParseDelimiter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDelimiter(":")
	assert.Error(t, err)
}

func TestParseCSV_NoHeaderMapsPositionally(t *testing.T) {
	opts := DefaultOptions()
	opts.HasHeader = false

	res := parse(t, "Ann,ann@example.com,41,Dev,R&D,Oslo,extra\n", opts)

	row := res.Rows[0]
	assert.Equal(t, "Ann", row.Value("name").String())
	assert.Equal(t, core.NumberValue(41), row.Value("age"))
	assert.Equal(t, "Oslo", row.Value("location").String())
	assert.Equal(t, "extra", row.Value("field_7").String())
	assert.Empty(t, res.Errors)
}

func TestParseCSV_StripsBOM(t *testing.T) {
	res := parse(t, "\ufeffName,Email\nAnn,ann@example.com\n", DefaultOptions())
	assert.Equal(t, []string{"name", "email"}, res.Fields)
	assert.Equal(t, "Ann", res.Rows[0].Value("name").String())
}

func TestParseCSV_Clean(t *testing.T) {
	opts := DefaultOptions()
	opts.Clean = true

	res := parse(t, "Name,Email,Code\n  Ann  ,ann@example.com,\"=\"\"00123\"\"\"\n", opts)

	assert.Equal(t, "Ann", res.Rows[0].Value("name").String())
	assert.Equal(t, "00123", res.Rows[0].Value("code").String())
}

func TestParseCSV_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := ParseCSV(ctx, strings.NewReader(""), DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ParseCSV(ctx, strings.NewReader("Name,Email\n"), DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyFile)

	big := "Name,Email\n" + strings.Repeat("Ann,ann@example.com\n", 100)
	_, err = ParseCSV(ctx, strings.NewReader(big), Options{HasHeader: true, MaxBytes: 64})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ParseCSV(canceled, strings.NewReader("Name\nAnn\n"), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVRoundTrip(t *testing.T) {
	rows := core.SampleRows()
	cols := core.DefaultColumns()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, cols, ExportOptions{VisibleOnly: false, Header: true}))

	res := parse(t, buf.String(), DefaultOptions())
	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, len(rows))

	for i, want := range rows {
		for _, c := range cols {
			assert.True(t, want.Value(c.Field).Equal(res.Rows[i].Value(c.Field)),
				"row %d field %s: want %#v got %#v", i, c.Field, want.Value(c.Field), res.Rows[i].Value(c.Field))
		}
	}
}

func TestWriteCSV(t *testing.T) {
	cols := core.DefaultColumns()
	rows := []core.Row{core.NewRow("r1", map[string]core.Value{
		"name":       core.StringValue("Ann, Jr."),
		"age":        core.NumberValue(41.5),
		"department": core.StringValue("hidden"),
	})}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, cols, DefaultExportOptions()))

	assert.Equal(t, "Name,Email,Age,Role\r\n\"Ann, Jr.\",,41.5,\r\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, rows, cols, ExportOptions{VisibleOnly: true}))
	assert.Equal(t, "\"Ann, Jr.\",,41.5,\r\n", buf.String())
}

func TestSelectColumnsOrdersByOrder(t *testing.T) {
	cols := core.DefaultColumns()
	cols[0].Order, cols[3].Order = 3, 0

	got := SelectColumns(cols, true)

	fields := make([]string, len(got))
	for i, c := range got {
		fields[i] = c.Field
	}
	assert.Equal(t, []string{"role", "email", "age", "name"}, fields)
}

func TestWriteJSON(t *testing.T) {
	cols := core.DefaultColumns()
	rows := []core.Row{
		core.NewRow("r1", map[string]core.Value{
			"name":  core.StringValue("Ann"),
			"email": core.StringValue("ann@example.com"),
			"age":   core.NumberValue(41),
			"role":  core.StringValue("Dev"),
		}),
		core.NewRow("r2", map[string]core.Value{"name": core.StringValue("Bob")}),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rows, cols, DefaultExportOptions()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "[\n  {\n"), "output is indented: %s", out)
	assert.Less(t, strings.Index(out, `"name"`), strings.Index(out, `"email"`))
	assert.Less(t, strings.Index(out, `"email"`), strings.Index(out, `"age"`))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, float64(41), decoded[0]["age"])
	assert.Equal(t, map[string]any{"name": "Bob"}, decoded[1], "missing fields are omitted")
}

func TestParseJSON(t *testing.T) {
	input := `[
		{"Name": "Ann", "Email": "ann@example.com", "Age": 41, "active": true, "tags": [1,2], "nick": null},
		{"name": "Bob", "email": ""}
	]`

	res, err := ParseJSON(context.Background(), strings.NewReader(input), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	ann := res.Rows[0]
	assert.Equal(t, core.StringValue("Ann"), ann.Value("name"))
	assert.Equal(t, core.NumberValue(41), ann.Value("age"))
	assert.Equal(t, core.BoolValue(true), ann.Value("active"))
	assert.Equal(t, core.StringValue("[1,2]"), ann.Value("tags"))
	assert.True(t, ann.Value("nick").IsEmpty())

	assert.Equal(t, []core.ImportError{{Row: 2, Field: "email", Message: "Email is required"}}, res.Errors)
}

func TestJSONRoundTrip(t *testing.T) {
	rows := core.SampleRows()
	cols := core.DefaultColumns()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, rows, cols, ExportOptions{}))

	res, err := ParseJSON(context.Background(), &buf, DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, res.Errors)
	for i, want := range rows {
		for _, c := range cols {
			assert.True(t, want.Value(c.Field).Equal(res.Rows[i].Value(c.Field)), "row %d field %s", i, c.Field)
		}
	}
}

func TestParseJSON_Rejects(t *testing.T) {
	tests := map[string]string{
		"malformed":  `[{"name":`,
		"object":     `{"name":"Ann"}`,
		"not object": `[1, 2]`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON(context.Background(), strings.NewReader(input), DefaultOptions())
			assert.ErrorContains(t, err, "invalid json")
		})
	}

	_, err := ParseJSON(context.Background(), strings.NewReader(`[]`), DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestCheckFile(t *testing.T) {
	assert.NoError(t, CheckFile("people.csv", "", 100, 0))
	assert.NoError(t, CheckFile("upload", "text/csv", 100, 0))

	err := CheckFile("people.xlsx", "application/vnd.ms-excel", 100, 0)
	assert.EqualError(t, err, "Please select a CSV file")

	err = CheckFile("people.csv", "text/csv", MaxFileSize+1, 0)
	assert.EqualError(t, err, "File size must be less than 5 MB")
	var ferr *core.FileError
	assert.ErrorAs(t, err, &ferr)
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		0:               "0 Bytes",
		512:             "512 Bytes",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5 MB",
		1234567:         "1.18 MB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatFileSize(in), "%d bytes", in)
	}
}

func TestExportFilename(t *testing.T) {
	name, err := ExportFilename("team report-2024_v2", FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "team report-2024_v2.json", name)

	for _, bad := range []string{"", "../etc/passwd", "a.b", strings.Repeat("x", 51)} {
		_, err := ExportFilename(bad, FormatCSV)
		assert.ErrorContains(t, err, "invalid export filename", bad)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.Contains(t, f.ContentType(), "application/json")

	_, err = ParseFormat("xml")
	assert.ErrorContains(t, err, "invalid export format")
}

func TestSampleCSV(t *testing.T) {
	sample := SampleCSV()
	assert.True(t, strings.HasPrefix(sample, "Name,Email,Age,Role,Department,Location\r\n"))

	res := parse(t, sample, DefaultOptions())
	assert.Len(t, res.Rows, 5)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "Charlie Davis", res.Rows[4].Value("name").String())
}
