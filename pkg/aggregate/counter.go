// Package aggregate computes read-time child counts and enrichment fields.
// Nothing it produces is persisted.
package aggregate

import (
	"context"
	"fmt"

	"github.com/aretw0/hdx/pkg/core"
)

// Reader is the read side of entity.Repository.
type Reader interface {
	FindByID(ctx context.Context, c core.Collection, id int64, includeDeleted bool) (core.Record, bool, error)
	FindAll(ctx context.Context, c core.Collection, includeDeleted bool) ([]core.Record, error)
	FilterByField(ctx context.Context, c core.Collection, field string, value any, includeDeleted bool) ([]core.Record, error)
}

// Counter groups active children by their parent id.
type Counter struct {
	repo Reader
}

// NewCounter creates a counter over repo.
func NewCounter(repo Reader) *Counter {
	return &Counter{repo: repo}
}

// CountChildren maps each parent id to the number of active records of
// child whose fk field references it. When parentIDs are given only those
// parents are counted. Parents without active children are absent from the
// result.
func (c *Counter) CountChildren(ctx context.Context, child core.Collection, fk string, parentIDs ...int64) (map[int64]int, error) {
	var scope map[int64]bool
	if len(parentIDs) > 0 {
		scope = make(map[int64]bool, len(parentIDs))
		for _, id := range parentIDs {
			scope[id] = true
		}
	}

	records, err := c.repo.FindAll(ctx, child, false)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int)
	for _, r := range records {
		pid, ok := core.AsInt64(r[fk])
		if !ok {
			continue
		}
		if scope != nil && !scope[pid] {
			continue
		}
		counts[pid]++
	}
	return counts, nil
}

// ChildCounts counts the children of parent along its counted edge.
func (c *Counter) ChildCounts(ctx context.Context, parent core.Collection, parentIDs ...int64) (map[int64]int, error) {
	e, ok := core.CountEdge(parent)
	if !ok {
		return map[int64]int{}, nil
	}
	return c.CountChildren(ctx, e.Child, e.ForeignKey, parentIDs...)
}

// HierarchyStats summarizes the active descendants of one record.
type HierarchyStats struct {
	Root       core.Ref                `json:"root"`
	Counts     map[core.Collection]int `json:"counts"`
	TotalItems int                     `json:"total_hierarchy_items"`
}

// HierarchyStats walks the active descendants of (coll, id). TotalItems
// includes the record itself.
func (c *Counter) HierarchyStats(ctx context.Context, coll core.Collection, id int64) (HierarchyStats, error) {
	stats := HierarchyStats{
		Root:   core.Ref{Collection: coll, ID: id},
		Counts: make(map[core.Collection]int),
	}

	_, found, err := c.repo.FindByID(ctx, coll, id, false)
	if err != nil {
		return stats, err
	}
	if !found {
		return stats, core.NewNotFoundError(coll, id)
	}

	if err := c.walk(ctx, coll, id, stats.Counts); err != nil {
		return stats, fmt.Errorf("hierarchy stats for %s: %w", stats.Root, err)
	}

	stats.TotalItems = 1
	for _, n := range stats.Counts {
		stats.TotalItems += n
	}
	return stats, nil
}

func (c *Counter) walk(ctx context.Context, parent core.Collection, id int64, counts map[core.Collection]int) error {
	for _, e := range core.ChildEdges(parent) {
		if _, ok := counts[e.Child]; !ok {
			counts[e.Child] = 0
		}
		children, err := c.repo.FilterByField(ctx, e.Child, e.ForeignKey, id, false)
		if err != nil {
			return err
		}
		counts[e.Child] += len(children)
		for _, child := range children {
			cid, ok := child.ID()
			if !ok {
				continue
			}
			if err := c.walk(ctx, e.Child, cid, counts); err != nil {
				return err
			}
		}
	}
	return nil
}
