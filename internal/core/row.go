package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// IDKey is the reserved key carrying a row's identity in flat encodings.
const IDKey = "id"

// Row is one record: a stable ID plus an open field map.
type Row struct {
	ID     string
	Fields map[string]Value
}

// NewRow builds a row that owns a copy of fields.
func NewRow(id string, fields map[string]Value) Row {
	r := Row{ID: id, Fields: make(map[string]Value, len(fields))}
	for k, v := range fields {
		if k == IDKey {
			continue
		}
		r.Fields[k] = v
	}
	return r
}

// Get returns the value for field and whether the key is present.
func (r Row) Get(field string) (Value, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Value returns the value for field, unset when missing.
func (r Row) Value(field string) Value {
	return r.Fields[field]
}

// Has reports whether the row carries a key for field.
func (r Row) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Keys returns the field names in sorted order.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (r Row) Clone() Row {
	return NewRow(r.ID, r.Fields)
}

// MarshalJSON encodes the row as a flat object with the id first and the
// remaining keys sorted.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"id":`)
	buf.Write(id)

	for _, k := range r.Keys() {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Fields[k])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat object. The "id" key must be a string when present.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Row{Fields: make(map[string]Value, len(raw))}
	for k, msg := range raw {
		if k == IDKey {
			if err := json.Unmarshal(msg, &out.ID); err != nil {
				return fmt.Errorf("row id must be a string: %w", err)
			}
			continue
		}
		var v Value
		if err := json.Unmarshal(msg, &v); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		out.Fields[k] = v
	}
	*r = out
	return nil
}

// cloneFields copies a field map, nil-safe.
func cloneFields(m map[string]Value) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
