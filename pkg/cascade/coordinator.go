// Package cascade propagates a soft delete from a parent record to every
// active descendant reachable through the core.Edges table.
package cascade

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/hdx/pkg/core"
)

// Repository is the subset of entity.Repository the coordinator needs.
type Repository interface {
	FindByID(ctx context.Context, c core.Collection, id int64, includeDeleted bool) (core.Record, bool, error)
	FilterByField(ctx context.Context, c core.Collection, field string, value any, includeDeleted bool) ([]core.Record, error)
	SoftDeleteByID(ctx context.Context, c core.Collection, id int64) (bool, error)
}

// Coordinator runs cascade deletes.
type Coordinator struct {
	repo   Repository
	logger *slog.Logger
	newID  func() string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOperationIDs overrides the generator of report operation ids.
func WithOperationIDs(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// New creates a coordinator over repo.
func New(repo Repository, opts ...Option) *Coordinator {
	c := &Coordinator{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// node is one record of the enumerated snapshot.
type node struct {
	ref      core.Ref
	edge     core.Edge // edge from the parent, zero for the root
	parent   core.Ref
	children []*node
}

// Delete soft-deletes the record (c, id) and then its active descendants,
// deepest first within each branch. A descendant whose children did not
// all delete stays active; sibling branches are unaffected.
//
// An error is returned only when nothing was deleted: the root is missing,
// refused, or its own delete failed. Once the root is deleted the outcome is
// a Report, possibly partial.
func (co *Coordinator) Delete(ctx context.Context, c core.Collection, id int64) (*Report, error) {
	if !c.Valid() {
		return nil, core.NewValidationError("cascade_delete", "collection", string(c), fmt.Sprintf("unknown collection %q", c))
	}
	if core.ReadOnly(c) {
		return nil, core.NewBusinessRuleError("read_only_collection",
			fmt.Sprintf("%s records are reference data and cannot be deleted", c.Singular()),
			map[string]any{"collection": string(c), "id": id})
	}

	_, found, err := co.repo.FindByID(ctx, c, id, false)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.NewNotFoundError(c, id)
	}

	root := &node{ref: core.Ref{Collection: c, ID: id}}
	report := newReport(co.newID(), root.ref)
	log := co.logger.With("operation_id", report.OperationID, "root", root.ref.String())

	if err := co.enumerate(ctx, root, report); err != nil {
		return nil, err
	}
	log.Debug("cascade enumerated", "discovered", report.Discovered)

	ok, err := co.repo.SoftDeleteByID(ctx, c, id)
	if err != nil || !ok {
		cause := err
		if cause == nil {
			cause = fmt.Errorf("%s %d was not active", c.Singular(), id)
		}
		log.Error("cascade root delete failed", "error", cause)
		return nil, core.NewStorageError("delete", c, cause)
	}

	for _, child := range root.children {
		co.deleteBranch(ctx, child, report, log)
	}

	if report.Partial() {
		log.Warn("cascade partially failed", "failures", len(report.Failures), "deleted", report.Deleted)
	} else {
		log.Info("cascade completed", "deleted", report.Deleted)
	}
	return report, nil
}

// enumerate snapshots every active descendant before anything is mutated.
func (co *Coordinator) enumerate(ctx context.Context, n *node, report *Report) error {
	for _, e := range core.ChildEdges(n.ref.Collection) {
		children, err := co.repo.FilterByField(ctx, e.Child, e.ForeignKey, n.ref.ID, false)
		if err != nil {
			return err
		}
		for _, rec := range children {
			cid, ok := rec.ID()
			if !ok {
				continue
			}
			child := &node{ref: core.Ref{Collection: e.Child, ID: cid}, edge: e, parent: n.ref}
			n.children = append(n.children, child)
			report.Discovered[e.Child]++
			if err := co.enumerate(ctx, child, report); err != nil {
				return err
			}
		}
	}
	return nil
}

// deleteBranch deletes the children of n and then n itself. It reports
// whether n ended up deleted.
func (co *Coordinator) deleteBranch(ctx context.Context, n *node, report *Report, log *slog.Logger) bool {
	blocked := false
	for _, child := range n.children {
		if !co.deleteBranch(ctx, child, report, log) {
			blocked = true
		}
	}
	if blocked {
		log.Debug("cascade branch blocked", "node", n.ref.String())
		return false
	}

	ok, err := co.repo.SoftDeleteByID(ctx, n.ref.Collection, n.ref.ID)
	if err != nil || !ok {
		f := Failure{
			Collection: n.ref.Collection,
			Type:       n.ref.Collection.Singular(),
			ID:         n.ref.ID,
			ParentRef:  n.parent,
			Parent:     fmt.Sprintf("%s=%d", n.edge.ForeignKey, n.parent.ID),
			Operation:  "soft_delete_by_id",
			File:       n.ref.Collection.Filename(),
		}
		if err != nil {
			f.Error = err.Error()
		}
		report.Failures = append(report.Failures, f)
		log.Warn("cascade node delete failed", "node", n.ref.String(), "parent", f.Parent, "error", err)
		return false
	}

	report.Deleted[n.ref.Collection]++
	return true
}
