package csvio

import (
	"bytes"
	"encoding/csv"
)

// SampleFilename is the download name of SampleCSV.
const SampleFilename = "sample_data.csv"

var sampleRecords = [][]string{
	{"Name", "Email", "Age", "Role", "Department", "Location"},
	{"John Doe", "john.doe@example.com", "30", "Developer", "Engineering", "New York"},
	{"Jane Smith", "jane.smith@example.com", "28", "Designer", "Design", "San Francisco"},
	{"Bob Johnson", "bob.johnson@example.com", "35", "Manager", "Operations", "Chicago"},
	{"Alice Brown", "alice.brown@example.com", "32", "Analyst", "Finance", "Boston"},
	{"Charlie Davis", "charlie.davis@example.com", "29", "Developer", "Engineering", "Seattle"},
}

// SampleCSV returns a six-column CSV with five example records.
func SampleCSV() string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	_ = w.WriteAll(sampleRecords) // writes to memory cannot fail
	return buf.String()
}
