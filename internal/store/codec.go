package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pierrec/lz4/v4"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// The wire form tags every value with its kind. core.Value's own JSON
// renders dates as strings, which would not survive a round trip.

type wireSnapshot struct {
	Columns []core.Column `json:"columns"`
	Rows    []wireRow     `json:"rows"`
}

type wireRow struct {
	ID     string               `json:"id"`
	Fields map[string]wireValue `json:"fields"`
}

type wireValue struct {
	K string   `json:"k"`
	S string   `json:"s,omitempty"`
	N *float64 `json:"n,omitempty"`
	B bool     `json:"b,omitempty"`
}

func toWire(v core.Value) wireValue {
	switch v.Kind() {
	case core.KindString:
		return wireValue{K: "s", S: v.Str()}
	case core.KindNumber:
		n := v.Float()
		return wireValue{K: "n", N: &n}
	case core.KindDate:
		return wireValue{K: "d", S: v.Time().Format(time.RFC3339Nano)}
	case core.KindBool:
		return wireValue{K: "b", B: v.Bool()}
	default:
		return wireValue{K: "u"}
	}
}

func fromWire(w wireValue) (core.Value, error) {
	switch w.K {
	case "s":
		return core.StringValue(w.S), nil
	case "n":
		if w.N == nil {
			return core.NumberValue(0), nil
		}
		return core.NumberValue(*w.N), nil
	case "d":
		t, err := time.Parse(time.RFC3339Nano, w.S)
		if err != nil {
			return core.Value{}, fmt.Errorf("decode date %q: %w", w.S, err)
		}
		return core.DateValue(t), nil
	case "b":
		return core.BoolValue(w.B), nil
	case "u":
		return core.Value{}, nil
	}
	return core.Value{}, fmt.Errorf("decode value: unknown kind %q", w.K)
}

// encodeSnapshot returns the uncompressed payload. Map keys are sorted by
// encoding/json, so equal snapshots encode to equal bytes.
func encodeSnapshot(snap core.Snapshot) ([]byte, error) {
	w := wireSnapshot{
		Columns: snap.Columns,
		Rows:    make([]wireRow, len(snap.Rows)),
	}
	for i, r := range snap.Rows {
		fields := make(map[string]wireValue, len(r.Fields))
		for k, v := range r.Fields {
			fields[k] = toWire(v)
		}
		w.Rows[i] = wireRow{ID: r.ID, Fields: fields}
	}
	return json.Marshal(w)
}

func decodeSnapshot(data []byte) (core.Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	snap := core.Snapshot{Columns: w.Columns, Rows: make([]core.Row, len(w.Rows))}
	for i, wr := range w.Rows {
		fields := make(map[string]core.Value, len(wr.Fields))
		for k, wv := range wr.Fields {
			v, err := fromWire(wv)
			if err != nil {
				return core.Snapshot{}, fmt.Errorf("row %s field %s: %w", wr.ID, k, err)
			}
			fields[k] = v
		}
		snap.Rows[i] = core.NewRow(wr.ID, fields)
	}
	return snap, nil
}

// digest identifies a payload so unchanged saves can be skipped.
func digest(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}

func compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(src []byte) ([]byte, error) {
	data, err := io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return data, nil
}
