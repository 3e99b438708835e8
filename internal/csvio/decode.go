package csvio

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewDecodingReader strips a UTF-8 BOM, decodes UTF-16 when a UTF-16 BOM
// is present, and replaces invalid UTF-8 sequences with U+FFFD.
// Spreadsheet exports on Windows routinely carry one of these BOMs.
func NewDecodingReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
