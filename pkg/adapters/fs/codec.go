package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/hdx/pkg/core"
)

// decodeCollection parses a collection file. Numbers are decoded exactly
// (json.Number) and then normalized: integer literals become int64, the
// rest float64.
func decodeCollection(data []byte) ([]core.Record, core.LoadStatus, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, core.LoadCorrupt, fmt.Errorf("%w: %w", core.ErrStorageCorruption, err)
	}
	if err := decoder.Decode(new(any)); err != io.EOF {
		return nil, core.LoadCorrupt, fmt.Errorf("%w: trailing data after array", core.ErrStorageCorruption)
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, core.LoadInvalidFormat, fmt.Errorf("%w: expected list, got %T", core.ErrStorageFormat, payload)
	}

	records := make([]core.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, core.LoadInvalidFormat, fmt.Errorf("%w: element %d is %T", core.ErrStorageFormat, i, item)
		}
		rec := make(core.Record, len(obj))
		for k, v := range obj {
			rec[k] = normalize(v)
		}
		records = append(records, rec)
	}
	return records, core.LoadOK, nil
}

// normalize maps decoded numbers to Go types by their literal: integers
// without a fraction or exponent become int64, everything else float64.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		lit := t.String()
		if !strings.ContainsAny(lit, ".eE") {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return lit
	case map[string]any:
		for k, inner := range t {
			t[k] = normalize(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalize(inner)
		}
		return t
	default:
		return v
	}
}

// floatLiteral keeps whole floats distinguishable from integers on disk:
// 1500.0 is written as 1500.0, not 1500.
func floatLiteral(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) >= 1e21 {
		return f
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64) + ".0")
}

// denormalize returns a copy of v ready for encoding. Caller records are
// not modified.
func denormalize(v any) any {
	switch t := v.(type) {
	case float64:
		return floatLiteral(t)
	case float32:
		return floatLiteral(float64(t))
	case core.Record:
		return denormalizeMap(t)
	case map[string]any:
		return denormalizeMap(t)
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = denormalize(inner)
		}
		return out
	default:
		return v
	}
}

func denormalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, inner := range m {
		out[k] = denormalize(inner)
	}
	return out
}

// encodeCollection renders records as an indented JSON array.
func encodeCollection(records []core.Record) ([]byte, error) {
	payload := make([]map[string]any, 0, len(records))
	for _, r := range records {
		payload = append(payload, denormalizeMap(r))
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
