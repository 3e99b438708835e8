package csvio

import (
	"context"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/gridkit/internal/core"
)

// ParseJSON reads a JSON array of flat objects, such as a previous JSON
// export, into candidate rows. Keys are sanitized like CSV headers and the
// same import checks apply. Nested values are kept as their raw JSON text.
func ParseJSON(ctx context.Context, r io.Reader, opts Options) (ImportResult, error) {
	data, err := io.ReadAll(NewDecodingReader(newLimitReader(r, opts.maxBytes())))
	if err != nil {
		return ImportResult{}, err
	}
	if !gjson.Valid(string(data)) {
		return ImportResult{}, fmt.Errorf("invalid json: document is malformed")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return ImportResult{}, fmt.Errorf("invalid json: expected an array of objects")
	}

	var (
		result  ImportResult
		index   int
		seen    = make(map[string]struct{})
		loopErr error
	)

	doc.ForEach(func(_, item gjson.Result) bool {
		if err := ctx.Err(); err != nil {
			loopErr = err
			return false
		}
		index++
		if !item.IsObject() {
			loopErr = fmt.Errorf("invalid json: element %d is not an object", index)
			return false
		}

		cells := make(map[string]core.Value)
		item.ForEach(func(key, value gjson.Result) bool {
			field := core.SanitizeFieldName(key.String())
			if field == "" || field == core.IDKey {
				return true
			}
			if _, dup := cells[field]; dup {
				return true
			}
			if _, ok := seen[field]; !ok {
				seen[field] = struct{}{}
				result.Fields = append(result.Fields, field)
			}
			cells[field] = jsonValue(value)
			return true
		})

		row, problems := buildRow(index, cells)
		result.Rows = append(result.Rows, row)
		result.Errors = append(result.Errors, problems...)
		return true
	})

	if loopErr != nil {
		return ImportResult{}, loopErr
	}
	if index == 0 {
		return ImportResult{}, ErrEmptyFile
	}
	return result, nil
}

func jsonValue(v gjson.Result) core.Value {
	switch v.Type {
	case gjson.String:
		return core.StringValue(v.Str)
	case gjson.Number:
		return core.NumberValue(v.Num)
	case gjson.True:
		return core.BoolValue(true)
	case gjson.False:
		return core.BoolValue(false)
	case gjson.Null:
		return core.Empty
	default:
		return core.StringValue(v.Raw)
	}
}
