package typed

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/hdx/pkg/core"
	"github.com/aretw0/hdx/pkg/rules"
)

// fromRecord decodes a record into T. JSON tags on T drive the mapping.
func fromRecord[T any](rec core.Record) (T, error) {
	var data T
	raw, err := json.Marshal(rec)
	if err != nil {
		return data, fmt.Errorf("failed to process record: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("failed to unmarshal into type %T: %w", data, err)
	}
	return data, nil
}

// toFields encodes data as writable fields of c. Derived fields such as
// counts and resolved names are dropped, and so are fixed fields when
// patching.
func toFields(c core.Collection, data any, patch bool) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var all map[string]any
	if err := decoder.Decode(&all); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to map: %w", err)
	}

	out := make(map[string]any, len(all))
	for _, f := range rules.Fields(c) {
		v, ok := all[f.Name]
		if !ok || (patch && f.Fixed) {
			continue
		}
		out[f.Name] = v
	}
	return out, nil
}
