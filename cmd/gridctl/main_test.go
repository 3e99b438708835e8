package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gridkit/internal/csvio"
)

func init() {
	color.NoColor = true
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestValidate(t *testing.T) {
	path := writeFile(t, "people.csv", "Name,Email,Age\nAnn,ann@example.com,41\nBob,,x\n")

	code, out, _ := runCmd("validate", path)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, out, "row 2, email: Email is required")
	assert.Contains(t, out, "row 2, age: Age must be a number")
	assert.Contains(t, out, "1 of 2 row(s) valid")
}

func TestValidate_NoHeader(t *testing.T) {
	path := writeFile(t, "people.csv", "Ann;ann@example.com;41;QA\n")

	code, out, _ := runCmd("validate", "-delimiter", ";", "-no-header", path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "1 of 1 row(s) valid\n", out)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file argument", []string{"validate"}, "expected exactly one file"},
		{"unreadable file", []string{"validate", filepath.Join(t.TempDir(), "nope.csv")}, "no such file"},
		{"bad delimiter", []string{"validate", "-delimiter", "#", "x.csv"}, "invalid delimiter"},
		{"unknown command", []string{"frobnicate"}, `unknown command "frobnicate"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCmd(tt.args...)
			assert.Equal(t, exitFailure, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestConvert_ToJSON(t *testing.T) {
	path := writeFile(t, "people.csv", "Name,Email,Age,Team\nAnn,ann@example.com,41,Core\n")

	code, out, errOut := runCmd("convert", "-format", "json", path)
	require.Equal(t, exitOK, code, errOut)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Ann", rows[0]["name"])
	assert.Equal(t, 41.0, rows[0]["age"])
	assert.Equal(t, "Core", rows[0]["team"], "unknown fields get their own column")
	assert.NotContains(t, rows[0], "department", "hidden columns are skipped by default")
}

func TestConvert_ToCSVFile(t *testing.T) {
	path := writeFile(t, "people.json", `[{"name":"Ann","email":"ann@example.com","age":41}]`)
	outPath := filepath.Join(t.TempDir(), "out.csv")

	code, out, errOut := runCmd("convert", "-format", "csv", "-o", outPath, path)
	require.Equal(t, exitOK, code, errOut)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Age,Role\r\nAnn,ann@example.com,41,\r\n", string(data))
}

func TestConvert_RejectsProblemsUnlessForced(t *testing.T) {
	path := writeFile(t, "people.csv", "Name,Email\nAnn,\n")

	code, out, errOut := runCmd("convert", path)
	assert.Equal(t, exitInvalid, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "row 1, email: Email is required")
	assert.Contains(t, errOut, "-force")

	code, out, errOut = runCmd("convert", "-force", "-format", "csv", path)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Ann")
	assert.Contains(t, errOut, "converted with 1 problem(s)")
}

func TestSample(t *testing.T) {
	code, out, _ := runCmd("sample")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, csvio.SampleCSV(), out)
}

func TestUsage(t *testing.T) {
	code, _, errOut := runCmd()
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut, "gridctl validate")

	code, out, _ := runCmd("help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "gridctl sample")
}
