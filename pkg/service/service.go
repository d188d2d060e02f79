// Package service is the application layer of hdx. It composes the entity
// repository, cascade coordinator, aggregate counter and validation rules
// into the operations exposed to callers.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/hdx/pkg/aggregate"
	"github.com/aretw0/hdx/pkg/cascade"
	"github.com/aretw0/hdx/pkg/core"
	"github.com/aretw0/hdx/pkg/entity"
	"github.com/aretw0/hdx/pkg/rules"
)

// Config holds the service dependencies beyond the store.
type Config struct {
	Logger    *slog.Logger
	Clock     func() time.Time
	StrictIDs bool
}

// Service handles the business logic for hierarchical records.
type Service struct {
	store    core.Store
	repo     *entity.Repository
	cascade  *cascade.Coordinator
	counter  *aggregate.Counter
	enricher *aggregate.Enricher
	rules    *rules.Validator
	logger   *slog.Logger
	clock    func() time.Time
	strict   bool
}

// New creates a Service over store.
func New(store core.Store, cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	repo := entity.New(store,
		entity.WithLogger(logger),
		entity.WithClock(clock),
		entity.WithStrictIDs(cfg.StrictIDs),
	)
	return &Service{
		store:    store,
		repo:     repo,
		cascade:  cascade.New(repo, cascade.WithLogger(logger)),
		counter:  aggregate.NewCounter(repo),
		enricher: aggregate.NewEnricher(repo),
		rules:    rules.NewValidator(repo),
		logger:   logger,
		clock:    clock,
		strict:   cfg.StrictIDs,
	}
}

// Store exposes the underlying store.
func (s *Service) Store() core.Store {
	return s.store
}

// Repository exposes the underlying entity repository.
func (s *Service) Repository() *entity.Repository {
	return s.repo
}

func readOnly(op string, c core.Collection) error {
	return &core.Error{
		Kind:       core.KindBusinessRule,
		Op:         op,
		Collection: c,
		Message:    fmt.Sprintf("%s records are reference data and cannot be modified", c.Singular()),
		Details:    map[string]any{"rule": "read_only_collection", "collection": string(c)},
		Err:        core.ErrReadOnly,
	}
}

func checkCollection(op string, c core.Collection) error {
	if !c.Valid() {
		return core.NewValidationError(op, "collection", string(c), fmt.Sprintf("unknown collection %q", c))
	}
	return nil
}

// Create validates input, checks that referenced records exist and stores
// a new record with the next id. The stored record is returned enriched.
func (s *Service) Create(ctx context.Context, c core.Collection, input map[string]any) (core.Record, error) {
	if err := checkCollection("create", c); err != nil {
		return nil, err
	}
	if core.ReadOnly(c) {
		return nil, readOnly("create", c)
	}

	rec, err := s.rules.Create(ctx, c, input)
	if err != nil {
		return nil, err
	}
	if err := s.rules.CheckReferences(ctx, c, rec); err != nil {
		return nil, err
	}

	now := s.clock()
	switch c {
	case core.Customers:
		if _, ok := rec["created_date"]; !ok {
			rec["created_date"] = now.Format(rules.DateLayout)
		}
	case core.VendorQuotes:
		stamp := now.UTC().Format(time.RFC3339)
		rec["created_at"] = stamp
		rec["updated_at"] = stamp
	}

	stored, err := s.repo.Insert(ctx, c, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("record created", "collection", c, "id", stored[core.FieldID])

	out := []core.Record{stored}
	if err := s.enricher.Enrich(ctx, c, out); err != nil {
		return nil, err
	}
	return out[0], nil
}

// Get returns an active record, enriched.
func (s *Service) Get(ctx context.Context, c core.Collection, id int64) (core.Record, error) {
	if err := checkCollection("get", c); err != nil {
		return nil, err
	}
	rec, found, err := s.repo.FindByID(ctx, c, id, false)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.NewNotFoundError(c, id)
	}

	out := []core.Record{rec}
	if err := s.enricher.Enrich(ctx, c, out); err != nil {
		return nil, err
	}
	return out[0], nil
}

// List returns the records of c in file order, enriched.
func (s *Service) List(ctx context.Context, c core.Collection, includeDeleted bool) ([]core.Record, error) {
	if err := checkCollection("list", c); err != nil {
		return nil, err
	}
	records, err := s.repo.FindAll(ctx, c, includeDeleted)
	if err != nil {
		return nil, err
	}
	if err := s.enricher.Enrich(ctx, c, records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByParent returns the active children of c owned by parentID. The
// parent itself must be active.
func (s *Service) ListByParent(ctx context.Context, c core.Collection, parentID int64) ([]core.Record, error) {
	if err := checkCollection("list", c); err != nil {
		return nil, err
	}
	edge, ok := core.ParentEdge(c)
	if !ok {
		return nil, core.NewValidationError("list", "collection", string(c), fmt.Sprintf("%s records have no parent", c.Singular()))
	}

	_, found, err := s.repo.FindByID(ctx, edge.Parent, parentID, false)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.NewNotFoundError(edge.Parent, parentID)
	}

	records, err := s.repo.FilterByField(ctx, c, edge.ForeignKey, parentID, false)
	if err != nil {
		return nil, err
	}
	if err := s.enricher.Enrich(ctx, c, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Update applies a validated partial update and returns the new state.
func (s *Service) Update(ctx context.Context, c core.Collection, id int64, input map[string]any) (core.Record, error) {
	if err := checkCollection("update", c); err != nil {
		return nil, err
	}
	if core.ReadOnly(c) {
		return nil, readOnly("update", c)
	}

	if _, found, err := s.repo.FindByID(ctx, c, id, false); err != nil {
		return nil, err
	} else if !found {
		return nil, core.NewNotFoundError(c, id)
	}

	patch, err := s.rules.Patch(ctx, c, id, input)
	if err != nil {
		return nil, err
	}
	if err := s.rules.CheckReferences(ctx, c, patch); err != nil {
		return nil, err
	}
	if c == core.VendorQuotes {
		patch["updated_at"] = s.clock().UTC().Format(time.RFC3339)
	}

	ok, err := s.repo.UpdateByID(ctx, c, id, patch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.NewNotFoundError(c, id)
	}
	s.logger.Info("record updated", "collection", c, "id", id, "fields", len(patch))
	return s.Get(ctx, c, id)
}

// Delete soft-deletes a record and cascades to its descendants.
func (s *Service) Delete(ctx context.Context, c core.Collection, id int64) (*cascade.Report, error) {
	if err := checkCollection("delete", c); err != nil {
		return nil, err
	}
	return s.cascade.Delete(ctx, c, id)
}

// Counts returns active child counts for parents of c, optionally limited
// to parentIDs.
func (s *Service) Counts(ctx context.Context, c core.Collection, parentIDs ...int64) (map[int64]int, error) {
	if err := checkCollection("counts", c); err != nil {
		return nil, err
	}
	return s.counter.ChildCounts(ctx, c, parentIDs...)
}

// Stats summarizes the active hierarchy below one record.
func (s *Service) Stats(ctx context.Context, c core.Collection, id int64) (aggregate.HierarchyStats, error) {
	if err := checkCollection("stats", c); err != nil {
		return aggregate.HierarchyStats{}, err
	}
	return s.counter.HierarchyStats(ctx, c, id)
}

// FileStats describes the backing file of every collection.
func (s *Service) FileStats(ctx context.Context) ([]core.FileStats, error) {
	in, ok := s.store.(core.Inspectable)
	if !ok {
		return nil, errors.New("store does not support file stats")
	}
	out := make([]core.FileStats, 0, len(core.Collections()))
	for _, c := range core.Collections() {
		st, err := in.Stats(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// Backups lists the backup files of c, oldest first.
func (s *Service) Backups(c core.Collection) ([]string, error) {
	b, ok := s.store.(core.Backupable)
	if !ok {
		return nil, errors.New("store does not support backups")
	}
	return b.Backups(c)
}

// PruneBackups keeps the newest keep backups of c.
func (s *Service) PruneBackups(c core.Collection, keep int) (int, error) {
	b, ok := s.store.(core.Backupable)
	if !ok {
		return 0, errors.New("store does not support backups")
	}
	return b.PruneBackups(c, keep)
}

// Watch observes changes to collection files if the store supports it.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	w, ok := s.store.(core.Watchable)
	if !ok {
		return nil, errors.New("store does not support watching")
	}
	return w.Watch(ctx, pattern)
}
