// Package csvio converts between uploaded files and table rows.
//
// Import turns CSV (or a JSON array of objects) into candidate rows plus a
// list of per-row problems; it never touches a table. Export writes a
// table's rows as CSV or pretty-printed JSON in column order.
package csvio

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// MaxFileSize is the largest accepted upload (5 MiB).
const MaxFileSize int64 = 5 * 1024 * 1024

var (
	// ErrFileTooLarge is returned when a stream exceeds its byte limit
	// while being read.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned when a file has no data records.
	ErrEmptyFile = errors.New("empty file: no data rows")
)

// CheckFile rejects uploads that are not CSV or exceed max bytes before
// any parsing happens. max <= 0 uses MaxFileSize.
func CheckFile(name, mimeType string, size, max int64) error {
	if max <= 0 {
		max = MaxFileSize
	}
	if !strings.Contains(strings.ToLower(mimeType), "csv") && !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return &core.FileError{Reason: "Please select a CSV file"}
	}
	if size > max {
		return &core.FileError{Reason: "File size must be less than " + FormatFileSize(max)}
	}
	return nil
}

// FormatFileSize renders bytes as "0 Bytes", "512 Bytes", "1.5 KB", "5 MB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizes[i]
}

// limitReader fails with ErrFileTooLarge instead of silently truncating.
type limitReader struct {
	r io.Reader
	n int64 // bytes still allowed
}

func newLimitReader(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	return &limitReader{r: r, n: max}
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.n < 0 {
		return 0, ErrFileTooLarge
	}
	// Read one byte past the limit so an exactly-sized file still passes.
	if int64(len(p)) > l.n+1 {
		p = p[:l.n+1]
	}
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return 0, ErrFileTooLarge
	}
	return n, err
}
