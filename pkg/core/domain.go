// Package core holds the domain vocabulary shared by every hdx component:
// collections, records, references between records, change events and the
// error taxonomy surfaced to callers.
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Collection names one of the fixed record sets. Each collection is backed
// by a single JSON array file.
type Collection string

const (
	Customers       Collection = "customers"
	Projects        Collection = "projects"
	Quotes          Collection = "quotes"
	FreightRequests Collection = "freight_requests"
	Vendors         Collection = "vendors"
	VendorQuotes    Collection = "vendor_quotes"
)

var collections = []Collection{Customers, Projects, Quotes, FreightRequests, Vendors, VendorQuotes}

var singular = map[Collection]string{
	Customers:       "customer",
	Projects:        "project",
	Quotes:          "quote",
	FreightRequests: "freight_request",
	Vendors:         "vendor",
	VendorQuotes:    "vendor_quote",
}

// Collections returns the fixed set of known collections in hierarchy order.
func Collections() []Collection {
	return append([]Collection(nil), collections...)
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	_, ok := singular[c]
	return ok
}

// Filename is the name of the backing file inside the data directory.
func (c Collection) Filename() string {
	return string(c) + ".json"
}

// Singular is the entity name used in reports and error details.
func (c Collection) Singular() string {
	if s, ok := singular[c]; ok {
		return s
	}
	return string(c)
}

// ParseCollection accepts a collection name with or without the ".json"
// suffix.
func ParseCollection(name string) (Collection, error) {
	c := Collection(strings.TrimSuffix(strings.TrimSpace(name), ".json"))
	if !c.Valid() {
		return "", NewValidationError("parse_collection", "collection", name,
			fmt.Sprintf("unknown collection %q", name))
	}
	return c, nil
}

// Fields every record carries.
const (
	FieldID        = "id"
	FieldIsDeleted = "is_deleted"
	FieldDeletedAt = "deleted_at"
)

// Record is a flat, string-keyed mapping of JSON-compatible values.
type Record map[string]any

// ID returns the record id when present and integral.
func (r Record) ID() (int64, bool) {
	return AsInt64(r[FieldID])
}

// Active reports whether the record is not soft-deleted. Any truthy
// is_deleted value (true, a non-zero number, a non-empty string or
// collection) marks the record as deleted.
func (r Record) Active() bool {
	return !truthy(r[FieldIsDeleted])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if f, ok := asFloat64(v); ok {
		return f != 0
	}
	return true
}

// Text returns a string field or the empty string.
func (r Record) Text(field string) string {
	s, _ := r[field].(string)
	return s
}

// Clone returns a deep copy so callers cannot reach stored state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Record:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}

// CloneAll deep-copies a slice of records.
func CloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// AsInt64 converts any integral numeric value (including json.Number and
// whole float64 values) to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// ValuesEqual compares two record values. Numbers compare by value
// regardless of their Go type, so a filter for int 3 matches a stored int64 3.
func ValuesEqual(a, b any) bool {
	if ai, ok := AsInt64(a); ok {
		if bi, ok := AsInt64(b); ok {
			return ai == bi
		}
	}
	if af, ok := asFloat64(a); ok {
		if bf, ok := asFloat64(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Ref points at a single record.
type Ref struct {
	Collection Collection `json:"collection"`
	ID         int64      `json:"id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s %d", r.Collection.Singular(), r.ID)
}

// EventType represents the type of change observed on a collection file.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a collection file made outside this process
// (or by it, when watching).
type Event struct {
	Type       EventType  `json:"type"`
	Collection Collection `json:"collection"`
	Timestamp  int64      `json:"timestamp"` // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Collection)
}
