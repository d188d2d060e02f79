// Package rules validates record fields and the business rules that span
// records, such as tracking id uniqueness.
package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/aretw0/hdx/pkg/core"
)

const (
	MaxNameLength                 = 255
	MaxItemsTextLength            = 2000
	MaxDeliveryRequirementsLength = 1000
	DateLayout                    = "2006-01-02"
)

var (
	MinAmount = decimal.RequireFromString("0.01")
	MaxBudget = decimal.RequireFromString("999999999.99")
	MaxWeight = decimal.RequireFromString("999999.99")

	trackingIDPattern = regexp.MustCompile(`^VQ\d{2}-\d+$`)
)

// Choice sets.
var (
	Statuses            = []string{"active", "planning", "in_progress", "on_hold", "completed"}
	Priorities          = []string{"low", "medium", "high", "critical"}
	VendorQuoteStatuses = []string{"pending", "quoted", "approved", "rejected", "completed"}
)

func invalid(field string, value any, format string, args ...any) error {
	return core.NewValidationError("validate", field, value, fmt.Sprintf(format, args...))
}

// RequiredString trims value and rejects empty or overlong strings.
func RequiredString(field string, value any, max int) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", invalid(field, value, "%s must be a string", field)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, value, "%s is required", field)
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", invalid(field, value, "%s exceeds maximum length of %d characters", field, max)
	}
	return s, nil
}

// OptionalString accepts any string up to max runes, empty included.
func OptionalString(field string, value any, max int) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", invalid(field, value, "%s must be a string", field)
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", invalid(field, value, "%s exceeds maximum length of %d characters", field, max)
	}
	return s, nil
}

// Choice requires value to be one of choices.
func Choice(field string, value any, choices []string) (string, error) {
	s, err := RequiredString(field, value, 0)
	if err != nil {
		return "", err
	}
	for _, c := range choices {
		if s == c {
			return s, nil
		}
	}
	return "", invalid(field, value, "%s must be one of: %s", field, strings.Join(choices, ", "))
}

// Date requires a YYYY-MM-DD calendar date.
func Date(field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", invalid(field, value, "%s cannot be empty", field)
	}
	s = strings.TrimSpace(s)
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", invalid(field, value, "%s must be in YYYY-MM-DD format", field)
	}
	return s, nil
}

// Decimal parses a JSON-compatible number or numeric string.
func Decimal(field string, value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, invalid(field, value, "%s must be a number", field)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, invalid(field, value, "%s must be a number", field)
		}
		return d, nil
	}
	if i, ok := core.AsInt64(value); ok {
		return decimal.NewFromInt(i), nil
	}
	return decimal.Zero, invalid(field, value, "%s must be a number", field)
}

// Amount requires a positive number no greater than max. The result is a
// float64 ready to be stored.
func Amount(field string, value any, max decimal.Decimal) (float64, error) {
	d, err := Decimal(field, value)
	if err != nil {
		return 0, err
	}
	if d.LessThan(MinAmount) {
		return 0, invalid(field, value, "%s must be greater than 0", field)
	}
	if d.GreaterThan(max) {
		return 0, invalid(field, value, "%s cannot exceed %s", field, max.StringFixed(2))
	}
	return d.InexactFloat64(), nil
}

// RefID requires a positive integer id.
func RefID(field string, value any) (int64, error) {
	id, ok := core.AsInt64(value)
	if !ok || id <= 0 {
		return 0, invalid(field, value, "%s must be a positive integer", field)
	}
	return id, nil
}

// Bool requires a boolean.
func Bool(field string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, invalid(field, value, "%s must be a boolean", field)
	}
	return b, nil
}

// TrackingID checks the VQ<yy>-<sequence> format, e.g. "VQ24-1".
func TrackingID(field string, value any) (string, error) {
	s, err := RequiredString(field, value, 0)
	if err != nil {
		return "", err
	}
	if !trackingIDPattern.MatchString(s) {
		return "", invalid(field, value, "invalid tracking ID format: %s. Expected format: VQYY-ID (e.g., VQ24-1)", s)
	}
	return s, nil
}
