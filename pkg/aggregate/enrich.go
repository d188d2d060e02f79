package aggregate

import (
	"context"

	"github.com/aretw0/hdx/pkg/core"
)

const (
	UnknownVendor = "Unknown Vendor"
	UnknownQuote  = "Unknown Quote"
)

// CountField is the enrichment field holding the active child count of a
// parent record, e.g. "project_count" on customers.
func CountField(parent core.Collection) (string, bool) {
	e, ok := core.CountEdge(parent)
	if !ok {
		return "", false
	}
	return e.Child.Singular() + "_count", true
}

// lookup names a record referenced by a foreign key and the field that
// carries the resolved name.
type lookup struct {
	fk       string
	target   core.Collection
	field    string
	fallback string
}

var lookups = map[core.Collection][]lookup{
	core.FreightRequests: {
		{fk: "vendor_id", target: core.Vendors, field: "vendor_name", fallback: UnknownVendor},
	},
	core.VendorQuotes: {
		{fk: "vendor_id", target: core.Vendors, field: "vendor_name", fallback: UnknownVendor},
		{fk: "quote_id", target: core.Quotes, field: "quote_name", fallback: UnknownQuote},
	},
}

// Enricher decorates copies of records with derived fields.
type Enricher struct {
	repo    Reader
	counter *Counter
}

// NewEnricher creates an enricher over repo.
func NewEnricher(repo Reader) *Enricher {
	return &Enricher{repo: repo, counter: NewCounter(repo)}
}

// Enrich adds the child count field and resolved reference names to each
// record of c. Records are modified in place; callers pass copies.
func (e *Enricher) Enrich(ctx context.Context, c core.Collection, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	if field, ok := CountField(c); ok {
		ids := make([]int64, 0, len(records))
		for _, r := range records {
			if id, ok := r.ID(); ok {
				ids = append(ids, id)
			}
		}
		counts, err := e.counter.ChildCounts(ctx, c, ids...)
		if err != nil {
			return err
		}
		for _, r := range records {
			id, _ := r.ID()
			r[field] = counts[id]
		}
	}

	for _, l := range lookups[c] {
		names, err := e.names(ctx, l.target)
		if err != nil {
			return err
		}
		for _, r := range records {
			name := l.fallback
			if id, ok := core.AsInt64(r[l.fk]); ok {
				if n, ok := names[id]; ok && n != "" {
					name = n
				}
			}
			r[l.field] = name
		}
	}
	return nil
}

// names indexes the name field of the active records of c. A reference to
// a soft-deleted record resolves to the fallback.
func (e *Enricher) names(ctx context.Context, c core.Collection) (map[int64]string, error) {
	records, err := e.repo.FindAll(ctx, c, false)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(records))
	for _, r := range records {
		if id, ok := r.ID(); ok {
			if _, seen := out[id]; !seen {
				out[id] = r.Text("name")
			}
		}
	}
	return out, nil
}
