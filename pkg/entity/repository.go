// Package entity provides single-collection CRUD primitives over a
// core.Store. It knows nothing about relationships between collections.
package entity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/hdx/pkg/core"
)

// Repository reads and mutates one collection at a time. Every record it
// returns is a deep copy.
type Repository struct {
	store     core.Store
	logger    *slog.Logger
	clock     func() time.Time
	strictIDs bool
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for anomalies such as duplicate ids.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock sets the time source for deleted_at stamps.
func WithClock(clock func() time.Time) Option {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithStrictIDs rejects appends whose id already exists in the collection
// instead of logging the anomaly and persisting both records.
func WithStrictIDs(strict bool) Option {
	return func(r *Repository) {
		r.strictIDs = strict
	}
}

// New creates a repository backed by store.
func New(store core.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// load collapses a missing collection into an empty slice.
func (r *Repository) load(ctx context.Context, c core.Collection) ([]core.Record, error) {
	return r.store.Load(ctx, c).Unwrap()
}

// FindByID returns the first active record with the given id, or the first
// record of any state when includeDeleted is set. Deleted duplicates are
// skipped so a later active record with the same id is still found.
func (r *Repository) FindByID(ctx context.Context, c core.Collection, id int64, includeDeleted bool) (core.Record, bool, error) {
	records, err := r.load(ctx, c)
	if err != nil {
		return nil, false, err
	}
	for _, rec := range records {
		if rid, ok := rec.ID(); !ok || rid != id {
			continue
		}
		if includeDeleted || rec.Active() {
			return rec.Clone(), true, nil
		}
	}
	return nil, false, nil
}

// FindAll returns the collection in file order.
func (r *Repository) FindAll(ctx context.Context, c core.Collection, includeDeleted bool) ([]core.Record, error) {
	records, err := r.load(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]core.Record, 0, len(records))
	for _, rec := range records {
		if includeDeleted || rec.Active() {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// FilterByField returns the records whose field equals value. Numbers
// compare by value, so an int filter matches a stored int64.
func (r *Repository) FilterByField(ctx context.Context, c core.Collection, field string, value any, includeDeleted bool) ([]core.Record, error) {
	records, err := r.load(ctx, c)
	if err != nil {
		return nil, err
	}
	out := []core.Record{}
	for _, rec := range records {
		if !includeDeleted && !rec.Active() {
			continue
		}
		v, ok := rec[field]
		if ok && core.ValuesEqual(v, value) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// NextID returns the id the next inserted record would receive.
func (r *Repository) NextID(ctx context.Context, c core.Collection) (int64, error) {
	return r.store.NextID(ctx, c)
}

// Append adds rec at the end of the collection as given.
//
// A record whose id already exists is still appended and a warning is
// logged, leaving both records on disk. WithStrictIDs turns this into a
// business rule violation.
func (r *Repository) Append(ctx context.Context, c core.Collection, rec core.Record) (bool, error) {
	if rec == nil {
		return false, core.NewValidationError("append", "record", nil, "record is required")
	}
	rec = rec.Clone()

	return r.store.Mutate(ctx, c, func(records []core.Record) ([]core.Record, bool, error) {
		if id, ok := rec.ID(); ok && containsID(records, id) {
			if r.strictIDs {
				return nil, false, core.NewBusinessRuleError("unique_id",
					fmt.Sprintf("%s with ID %d already exists", c.Singular(), id),
					map[string]any{"collection": string(c), "id": id})
			}
			r.logger.Warn("duplicate id appended", "collection", c, "id", id)
		}
		return append(records, rec), true, nil
	})
}

// Insert assigns the next id to rec, fills the soft-delete fields and
// appends it, all within one write cycle. The stored record is returned.
func (r *Repository) Insert(ctx context.Context, c core.Collection, rec core.Record) (core.Record, error) {
	if rec == nil {
		rec = core.Record{}
	}
	stored := rec.Clone()

	_, err := r.store.Mutate(ctx, c, func(records []core.Record) ([]core.Record, bool, error) {
		stored[core.FieldID] = nextID(records)
		stored[core.FieldIsDeleted] = false
		stored[core.FieldDeletedAt] = nil
		return append(records, stored), true, nil
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("record inserted", "collection", c, "id", stored[core.FieldID])
	return stored.Clone(), nil
}

// UpdateByID merges the non-nil values of fields into the active record
// with the given id. The id itself is immutable. It reports false when no
// active record matches.
func (r *Repository) UpdateByID(ctx context.Context, c core.Collection, id int64, fields map[string]any) (bool, error) {
	patch := core.Record(fields).Clone()

	return r.store.Mutate(ctx, c, func(records []core.Record) ([]core.Record, bool, error) {
		i := indexActive(records, id)
		if i < 0 {
			return records, false, nil
		}
		for k, v := range patch {
			if v == nil || k == core.FieldID {
				continue
			}
			records[i][k] = v
		}
		return records, true, nil
	})
}

// SoftDeleteByID marks the active record with the given id as deleted. It
// reports false when no active record matches, so repeating a delete never
// moves deleted_at.
func (r *Repository) SoftDeleteByID(ctx context.Context, c core.Collection, id int64) (bool, error) {
	if core.ReadOnly(c) {
		return false, &core.Error{
			Kind:       core.KindBusinessRule,
			Op:         "soft_delete_by_id",
			Collection: c,
			Message:    fmt.Sprintf("%s records are reference data and cannot be deleted", c.Singular()),
			Details:    map[string]any{"rule": "read_only_collection", "collection": string(c)},
			Err:        core.ErrReadOnly,
		}
	}

	return r.store.Mutate(ctx, c, func(records []core.Record) ([]core.Record, bool, error) {
		i := indexActive(records, id)
		if i < 0 {
			return records, false, nil
		}
		records[i][core.FieldIsDeleted] = true
		records[i][core.FieldDeletedAt] = r.clock().UTC().Format(time.RFC3339Nano)
		return records, true, nil
	})
}

// indexActive returns the position of the first active record with id.
func indexActive(records []core.Record, id int64) int {
	for i, rec := range records {
		if rid, ok := rec.ID(); ok && rid == id && rec.Active() {
			return i
		}
	}
	return -1
}

func containsID(records []core.Record, id int64) bool {
	for _, rec := range records {
		if rid, ok := rec.ID(); ok && rid == id {
			return true
		}
	}
	return false
}

func nextID(records []core.Record) int64 {
	var max int64
	for _, rec := range records {
		if id, ok := rec.ID(); ok && id > max {
			max = id
		}
	}
	return max + 1
}
