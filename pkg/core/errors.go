package core

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable category of an Error.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindStorage      Kind = "DATABASE_ERROR"
	KindBusinessRule Kind = "BUSINESS_RULE_VIOLATION"
)

var kindNames = map[Kind]string{
	KindNotFound:     "DataNotFoundError",
	KindValidation:   "DataValidationError",
	KindStorage:      "DatabaseOperationError",
	KindBusinessRule: "BusinessRuleViolationError",
}

// Error is the structured error surfaced by every hdx component.
type Error struct {
	Kind       Kind
	Op         string
	Collection Collection
	Message    string
	Details    map[string]any
	Err        error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrBusinessRule = &Error{Kind: KindBusinessRule}
)

// Low-level storage causes, wrapped inside an *Error.
var (
	ErrStorageFormat     = errors.New("collection is not an array of objects")
	ErrStorageCorruption = errors.New("collection contains malformed json")
	ErrStorageWrite      = errors.New("collection write failed")
	ErrStorageRead       = errors.New("collection read failed")
	ErrReadOnly          = errors.New("collection is read-only")
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches bare kind sentinels such as ErrNotFound.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" || t.Op != "" || t.Err != nil {
		return e == t
	}
	return t.Kind == e.Kind
}

// ToMap renders the error as a caller-facing payload.
func (e *Error) ToMap() map[string]any {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	name, ok := kindNames[e.Kind]
	if !ok {
		name = "DataExplorerError"
	}
	return map[string]any{
		"error":      name,
		"message":    e.Error(),
		"details":    details,
		"error_code": string(e.Kind),
	}
}

// KindOf extracts the Kind from err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// NewNotFoundError reports a missing or soft-deleted record.
func NewNotFoundError(c Collection, id int64) *Error {
	return &Error{
		Kind:       KindNotFound,
		Op:         "find",
		Collection: c,
		Message:    fmt.Sprintf("%s with ID %d not found", c.Singular(), id),
		Details: map[string]any{
			"resource_type": c.Singular(),
			"resource_id":   id,
		},
	}
}

// NewValidationError reports malformed input.
func NewValidationError(op, field string, value any, msg string) *Error {
	details := map[string]any{}
	if field != "" {
		details["field"] = field
	}
	if value != nil {
		details["value"] = value
	}
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: msg,
		Details: details,
	}
}

// NewStorageError wraps a low-level I/O or serialization failure.
func NewStorageError(op string, c Collection, cause error) *Error {
	details := map[string]any{"operation": op}
	if c != "" {
		details["filename"] = c.Filename()
	}
	if cause != nil {
		details["original_error"] = cause.Error()
	}
	return &Error{
		Kind:       KindStorage,
		Op:         op,
		Collection: c,
		Message:    fmt.Sprintf("failed to %s %s", op, c.Filename()),
		Details:    details,
		Err:        cause,
	}
}

// NewBusinessRuleError reports a breach of a cross-record invariant.
func NewBusinessRuleError(rule, msg string, context map[string]any) *Error {
	details := map[string]any{}
	for k, v := range context {
		if k == "rule" {
			continue
		}
		details[k] = v
	}
	details["rule"] = rule
	return &Error{
		Kind:    KindBusinessRule,
		Op:      rule,
		Message: msg,
		Details: details,
	}
}
