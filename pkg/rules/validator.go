package rules

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/hdx/pkg/core"
)

// Finder is the read side of entity.Repository used by cross-record rules.
type Finder interface {
	FindByID(ctx context.Context, c core.Collection, id int64, includeDeleted bool) (core.Record, bool, error)
	FilterByField(ctx context.Context, c core.Collection, field string, value any, includeDeleted bool) ([]core.Record, error)
}

// Validator applies field checks and cross-record rules to writes.
type Validator struct {
	repo Finder
}

// NewValidator creates a validator over repo.
func NewValidator(repo Finder) *Validator {
	return &Validator{repo: repo}
}

var reserved = map[string]bool{
	core.FieldID:        true,
	core.FieldIsDeleted: true,
	core.FieldDeletedAt: true,
}

func index(c core.Collection) map[string]Field {
	out := make(map[string]Field, len(schemas[c]))
	for _, f := range schemas[c] {
		out[f.Name] = f
	}
	return out
}

func rejectUnknown(c core.Collection, op string, input map[string]any, fields map[string]Field) error {
	var unknown []string
	for k := range input {
		if reserved[k] {
			return core.NewValidationError(op, k, input[k], fmt.Sprintf("%s is managed by the store and cannot be set", k))
		}
		if _, ok := fields[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return core.NewValidationError(op, unknown[0], nil, fmt.Sprintf("unknown %s fields: %v", c.Singular(), unknown))
	}
	return nil
}

// Create validates a new record of c and returns its normalized fields.
// Defaults are filled in; id and soft-delete fields are left to the store.
func (v *Validator) Create(ctx context.Context, c core.Collection, input map[string]any) (core.Record, error) {
	if !c.Valid() {
		return nil, core.NewValidationError("create", "collection", string(c), fmt.Sprintf("unknown collection %q", c))
	}
	fields := index(c)
	if err := rejectUnknown(c, "create", input, fields); err != nil {
		return nil, err
	}

	out := make(core.Record, len(input))
	for _, f := range schemas[c] {
		raw, ok := input[f.Name]
		if !ok || raw == nil {
			if f.Required {
				return nil, core.NewValidationError("create", f.Name, nil, fmt.Sprintf("%s is required", f.Name))
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}
		val, err := f.check(f.Name, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = val
	}

	if err := v.uniqueTrackingID(ctx, c, out, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// Patch validates a partial update of record id. Nil values are dropped,
// matching the repository merge, and fixed fields are refused.
func (v *Validator) Patch(ctx context.Context, c core.Collection, id int64, input map[string]any) (map[string]any, error) {
	if !c.Valid() {
		return nil, core.NewValidationError("update", "collection", string(c), fmt.Sprintf("unknown collection %q", c))
	}
	fields := index(c)
	if err := rejectUnknown(c, "update", input, fields); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(input))
	for k, raw := range input {
		if raw == nil {
			continue
		}
		f := fields[k]
		if f.Fixed {
			return nil, core.NewValidationError("update", k, raw, fmt.Sprintf("%s cannot be changed", k))
		}
		val, err := f.check(k, raw)
		if err != nil {
			return nil, err
		}
		out[k] = val
	}

	if err := v.uniqueTrackingID(ctx, c, out, id); err != nil {
		return nil, err
	}
	return out, nil
}

// uniqueTrackingID rejects a tracking id already used by another active
// vendor quote.
func (v *Validator) uniqueTrackingID(ctx context.Context, c core.Collection, fields map[string]any, self int64) error {
	if c != core.VendorQuotes {
		return nil
	}
	tid, ok := fields["tracking_id"].(string)
	if !ok {
		return nil
	}
	existing, err := v.repo.FilterByField(ctx, core.VendorQuotes, "tracking_id", tid, false)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if id, _ := r.ID(); id != self {
			return core.NewBusinessRuleError("unique_tracking_id",
				fmt.Sprintf("Tracking ID '%s' already exists", tid),
				map[string]any{"field": "tracking_id", "value": tid})
		}
	}
	return nil
}

// CheckReferences verifies that every foreign key present in fields points
// at an active record.
func (v *Validator) CheckReferences(ctx context.Context, c core.Collection, fields map[string]any) error {
	for _, ref := range references[c] {
		raw, ok := fields[ref.Field]
		if !ok || raw == nil {
			continue
		}
		id, ok := core.AsInt64(raw)
		if !ok {
			return core.NewValidationError("check_reference", ref.Field, raw, fmt.Sprintf("%s must be a positive integer", ref.Field))
		}
		_, found, err := v.repo.FindByID(ctx, ref.Target, id, false)
		if err != nil {
			return err
		}
		if !found {
			return core.NewNotFoundError(ref.Target, id)
		}
	}
	return nil
}
