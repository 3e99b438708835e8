package core

import (
	"regexp"
	"strings"
	"unicode"
)

// fieldNameRegex is the well-formedness rule for column fields.
var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// SanitizeFieldName derives a field name from a human header:
// trim, lowercase, whitespace runs to "_", drop anything outside
// [a-zA-Z0-9_], then drop leading digits. The result may be empty.
func SanitizeFieldName(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))

	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace = false
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return strings.TrimLeft(b.String(), "0123456789")
}

// ValidFieldName reports whether field can name a column.
func ValidFieldName(field string) bool {
	return field != IDKey && fieldNameRegex.MatchString(field)
}
