package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hdx/pkg/adapters/fs"
	"github.com/aretw0/hdx/pkg/core"
	"github.com/aretw0/hdx/pkg/service"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func setupService(t *testing.T) (*service.Service, *fs.Store) {
	t.Helper()
	ctx := context.Background()
	store := fs.NewStore(fs.Config{Path: t.TempDir()})
	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.Save(ctx, core.Vendors, []core.Record{
		{"id": int64(1), "name": "FastFreight", "specialty": "LTL", "rating": 4.5},
	}))
	svc := service.New(store, service.Config{Clock: func() time.Time { return fixedNow }})
	return svc, store
}

// buildHierarchy creates customer -> project -> quote -> freight request
// and vendor quote, returning their ids.
func buildHierarchy(t *testing.T, svc *service.Service) (customer, project, quote int64) {
	t.Helper()
	ctx := context.Background()

	c, err := svc.Create(ctx, core.Customers, map[string]any{"name": "Acme", "status": "active"})
	require.NoError(t, err)
	customer, _ = c.ID()

	p, err := svc.Create(ctx, core.Projects, map[string]any{
		"customer_id": customer, "name": "Warehouse", "budget": 250000.75, "status": "planning", "start_date": "2024-07-01",
	})
	require.NoError(t, err)
	project, _ = p.ID()

	q, err := svc.Create(ctx, core.Quotes, map[string]any{
		"project_id": project, "name": "Racking", "amount": 1200.5, "status": "active",
	})
	require.NoError(t, err)
	quote, _ = q.ID()

	_, err = svc.Create(ctx, core.FreightRequests, map[string]any{
		"quote_id": quote, "vendor_id": int64(1), "name": "Pallets", "weight": 800.25, "priority": "high", "status": "active",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, core.VendorQuotes, map[string]any{
		"quote_id": quote, "vendor_id": int64(1), "tracking_id": "VQ24-1", "items_text": "racks", "status": "pending",
	})
	require.NoError(t, err)
	return customer, project, quote
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	t.Run("Assigns Ids And Defaults", func(t *testing.T) {
		c, err := svc.Create(ctx, core.Customers, map[string]any{"name": " Acme ", "status": "active"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), c["id"])
		assert.Equal(t, "Acme", c["name"])
		assert.Equal(t, "2024-06-01", c["created_date"])
		assert.Equal(t, false, c["is_deleted"])
		assert.Equal(t, 0, c["project_count"])
	})

	t.Run("Missing Parent", func(t *testing.T) {
		_, err := svc.Create(ctx, core.Projects, map[string]any{
			"customer_id": int64(99), "name": "P", "budget": 10.0, "status": "planning",
		})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Vendors Are Read Only", func(t *testing.T) {
		_, err := svc.Create(ctx, core.Vendors, map[string]any{"name": "New"})
		assert.ErrorIs(t, err, core.ErrReadOnly)
	})

	t.Run("Enriched Vendor Quote", func(t *testing.T) {
		_, _, quote := buildHierarchy(t, svc)
		vqs, err := svc.ListByParent(ctx, core.VendorQuotes, quote)
		require.NoError(t, err)
		require.Len(t, vqs, 1)
		assert.Equal(t, "FastFreight", vqs[0]["vendor_name"])
		assert.Equal(t, "Racking", vqs[0]["quote_name"])
		assert.Equal(t, fixedNow.Format(time.RFC3339), vqs[0]["created_at"])
	})
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	customer, project, _ := buildHierarchy(t, svc)

	c, err := svc.Get(ctx, core.Customers, customer)
	require.NoError(t, err)
	assert.Equal(t, 1, c["project_count"])

	p, err := svc.Get(ctx, core.Projects, project)
	require.NoError(t, err)
	assert.Equal(t, 1, p["quote_count"])

	_, err = svc.Get(ctx, core.Projects, 404)
	assert.ErrorIs(t, err, core.ErrNotFound)

	projects, err := svc.ListByParent(ctx, core.Projects, customer)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	_, err = svc.ListByParent(ctx, core.Projects, 404)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.ListByParent(ctx, core.Customers, 1)
	assert.ErrorIs(t, err, core.ErrValidation)

	all, err := svc.List(ctx, core.FreightRequests, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "FastFreight", all[0]["vendor_name"])
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	_, project, _ := buildHierarchy(t, svc)

	updated, err := svc.Update(ctx, core.Projects, project, map[string]any{"name": "Renamed", "status": nil})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated["name"])
	assert.Equal(t, "planning", updated["status"])
	assert.Equal(t, 250000.75, updated["budget"])

	_, err = svc.Update(ctx, core.Projects, project, map[string]any{"budget": -1})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = svc.Update(ctx, core.Projects, 404, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Update(ctx, core.FreightRequests, 1, map[string]any{"vendor_id": int64(9)})
	assert.ErrorIs(t, err, core.ErrNotFound, "vendor must exist")
}

func TestDelete_CascadesAndCounts(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	customer, project, quote := buildHierarchy(t, svc)

	stats, err := svc.Stats(ctx, core.Customers, customer)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalItems)

	report, err := svc.Delete(ctx, core.Customers, customer)
	require.NoError(t, err)
	assert.False(t, report.Partial())
	assert.Equal(t, 4, report.Total())

	for _, ref := range []core.Ref{
		{Collection: core.Customers, ID: customer},
		{Collection: core.Projects, ID: project},
		{Collection: core.Quotes, ID: quote},
	} {
		_, err := svc.Get(ctx, ref.Collection, ref.ID)
		assert.ErrorIs(t, err, core.ErrNotFound, ref.String())
	}

	counts, err := svc.Counts(ctx, core.Customers)
	require.NoError(t, err)
	assert.Empty(t, counts)

	deleted, err := svc.List(ctx, core.Projects, true)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, true, deleted[0]["is_deleted"])

	_, err = svc.Delete(ctx, core.Vendors, 1)
	assert.ErrorIs(t, err, core.ErrBusinessRule)
}

func TestFileStatsAndBackups(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)
	buildHierarchy(t, svc)

	stats, err := svc.FileStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, len(core.Collections()))
	for _, st := range stats {
		assert.True(t, st.HasData, st.Collection)
		assert.Equal(t, 1, st.TotalItems, st.Collection)
	}

	_, err = svc.Update(ctx, core.Customers, 1, map[string]any{"status": "on_hold"})
	require.NoError(t, err)

	backups, err := svc.Backups(core.Customers)
	require.NoError(t, err)
	assert.NotEmpty(t, backups)

	removed, err := svc.PruneBackups(core.Customers, 0)
	require.NoError(t, err)
	assert.Equal(t, len(backups), removed)
}

func TestState(t *testing.T) {
	svc, _ := setupService(t)
	state, ok := svc.State().(service.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "store", state.StoreType)
	assert.Contains(t, state.Collections, "vendor_quotes")
	assert.Equal(t, "service", svc.ComponentType())
}
