package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hdx/pkg/core"
)

// setupTestStore creates an initialized store in a temp dir.
func setupTestStore(t *testing.T, mod func(*Config)) *Store {
	t.Helper()

	cfg := Config{Path: t.TempDir()}
	if mod != nil {
		mod(&cfg)
	}
	store := NewStore(cfg)
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func writeRaw(t *testing.T, s *Store, c core.Collection, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.path(c), []byte(content), 0644))
}

func TestLoad_Outcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing File Is Not Initialized", func(t *testing.T) {
		s := setupTestStore(t, nil)

		res := s.Load(ctx, core.Customers)
		assert.Equal(t, core.LoadNotInitialized, res.Status)

		records, err := res.Unwrap()
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Malformed JSON Is Corrupt", func(t *testing.T) {
		s := setupTestStore(t, nil)
		writeRaw(t, s, core.Projects, `[{"id": 1,`)

		res := s.Load(ctx, core.Projects)
		assert.Equal(t, core.LoadCorrupt, res.Status)

		_, err := res.Unwrap()
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrStorageCorruption)
		assert.ErrorIs(t, err, core.ErrStorage)
	})

	t.Run("Object Instead Of Array Is Invalid Format", func(t *testing.T) {
		s := setupTestStore(t, nil)
		writeRaw(t, s, core.Quotes, `{"id": 1}`)

		res := s.Load(ctx, core.Quotes)
		assert.Equal(t, core.LoadInvalidFormat, res.Status)
		assert.ErrorIs(t, res.Err, core.ErrStorageFormat)
		assert.Equal(t, core.KindValidation, core.KindOf(res.Err))
	})

	t.Run("Array Of Scalars Is Invalid Format", func(t *testing.T) {
		s := setupTestStore(t, nil)
		writeRaw(t, s, core.Quotes, `[1, 2, 3]`)

		res := s.Load(ctx, core.Quotes)
		assert.Equal(t, core.LoadInvalidFormat, res.Status)
	})

	t.Run("Trailing Garbage Is Corrupt", func(t *testing.T) {
		s := setupTestStore(t, nil)
		writeRaw(t, s, core.Quotes, `[] []`)

		assert.Equal(t, core.LoadCorrupt, s.Load(ctx, core.Quotes).Status)
	})

	t.Run("Unknown Collection", func(t *testing.T) {
		s := setupTestStore(t, nil)

		res := s.Load(ctx, core.Collection("invoices"))
		assert.NotEqual(t, core.LoadOK, res.Status)
		assert.ErrorIs(t, res.Err, core.ErrValidation)
	})

	t.Run("Numbers Are Normalized", func(t *testing.T) {
		s := setupTestStore(t, nil)
		writeRaw(t, s, core.Projects, `[{"id": 7, "budget": 1500.25, "big": 9007199254740993}]`)

		records, err := s.Load(ctx, core.Projects).Unwrap()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, int64(7), records[0]["id"])
		assert.Equal(t, 1500.25, records[0]["budget"])
		assert.Equal(t, int64(9007199254740993), records[0]["big"])
	})
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, nil)

	records := []core.Record{
		{"id": int64(1), "name": "Acme <Corp> & Sons", "status": "active", "is_deleted": false, "deleted_at": nil},
		{"id": int64(2), "name": "Globex", "budget": 1250.5, "is_deleted": true, "deleted_at": "2024-01-02T03:04:05Z"},
	}
	require.NoError(t, s.Save(ctx, core.Customers, records))

	loaded, err := s.Load(ctx, core.Customers).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestSaveLoad_WholeFloatsStayFloats(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, nil)

	records := []core.Record{
		{"id": int64(1), "budget": 1500.0, "weight": 0.0, "nested": map[string]any{"rate": 2.0, "qty": int64(3)}},
	}
	require.NoError(t, s.Save(ctx, core.Projects, records))

	loaded, err := s.Load(ctx, core.Projects).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
	assert.IsType(t, float64(0), loaded[0]["budget"])
	assert.Equal(t, 1.5e21, mustRoundTrip(t, s, 1.5e21))
	assert.Equal(t, int64(1), records[0]["id"], "caller records are not modified")
	assert.Equal(t, 1500.0, records[0]["budget"])
}

func mustRoundTrip(t *testing.T, s *Store, v float64) any {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, core.Quotes, []core.Record{{"id": int64(1), "amount": v}}))
	loaded, err := s.Load(ctx, core.Quotes).Unwrap()
	require.NoError(t, err)
	return loaded[0]["amount"]
}

func TestMutate_KeepsUntouchedNumberLiterals(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, nil)
	writeRaw(t, s, core.Quotes, `[{"id": 1, "amount": 1500.0}, {"id": 2, "amount": 3.0, "count": 4}]`)

	_, err := s.Mutate(ctx, core.Quotes, func(records []core.Record) ([]core.Record, bool, error) {
		records[0]["amount"] = 1600.0
		return records, true, nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(s.path(core.Quotes))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount": 1600.0`)
	assert.Contains(t, string(data), `"amount": 3.0`)
	assert.Contains(t, string(data), `"count": 4`)
}

func TestSave_NilWritesEmptyArray(t *testing.T) {
	s := setupTestStore(t, nil)
	require.NoError(t, s.Save(context.Background(), core.Vendors, nil))

	data, err := os.ReadFile(s.path(core.Vendors))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestSave_FailsWhenDirectoryMissing(t *testing.T) {
	s := NewStore(Config{Path: filepath.Join(t.TempDir(), "missing")})

	err := s.Save(context.Background(), core.Customers, []core.Record{{"id": int64(1)}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStorageWrite)
	assert.Equal(t, core.KindStorage, core.KindOf(err))
}

func TestNextID(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, nil)

	id, err := s.NextID(ctx, core.Quotes)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id, "absent collection starts at 1")

	require.NoError(t, s.Save(ctx, core.Quotes, []core.Record{
		{"id": int64(3)},
		{"id": int64(9), "is_deleted": true},
		{"id": int64(4)},
	}))

	id, err = s.NextID(ctx, core.Quotes)
	require.NoError(t, err)
	assert.Equal(t, int64(10), id, "deleted records still count toward the max")
}

func TestNextID_CorruptPropagates(t *testing.T) {
	s := setupTestStore(t, nil)
	writeRaw(t, s, core.Quotes, `not json`)

	_, err := s.NextID(context.Background(), core.Quotes)
	assert.ErrorIs(t, err, core.ErrStorageCorruption)
}

func TestMutate(t *testing.T) {
	ctx := context.Background()

	t.Run("Unchanged Does Not Write", func(t *testing.T) {
		s := setupTestStore(t, nil)

		changed, err := s.Mutate(ctx, core.Customers, func(records []core.Record) ([]core.Record, bool, error) {
			return records, false, nil
		})
		require.NoError(t, err)
		assert.False(t, changed)

		_, statErr := os.Stat(s.path(core.Customers))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("Callback Error Aborts", func(t *testing.T) {
		s := setupTestStore(t, nil)
		boom := errors.New("boom")

		_, err := s.Mutate(ctx, core.Customers, func(records []core.Record) ([]core.Record, bool, error) {
			return append(records, core.Record{"id": int64(1)}), true, boom
		})
		assert.ErrorIs(t, err, boom)

		records, err := s.Load(ctx, core.Customers).Unwrap()
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Concurrent Appends Are Not Lost", func(t *testing.T) {
		s := setupTestStore(t, func(c *Config) { c.DisableBackups = true })

		const writers = 20
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Mutate(ctx, core.Projects, func(records []core.Record) ([]core.Record, bool, error) {
					rec := core.Record{"id": NextID(records)}
					return append(records, rec), true, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		records, err := s.Load(ctx, core.Projects).Unwrap()
		require.NoError(t, err)
		require.Len(t, records, writers)

		seen := make(map[int64]bool)
		for _, r := range records {
			id, ok := r.ID()
			require.True(t, ok)
			assert.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
	})
}

func TestBackups(t *testing.T) {
	ctx := context.Background()

	t.Run("Created Before Overwrite", func(t *testing.T) {
		s := setupTestStore(t, nil)

		require.NoError(t, s.Save(ctx, core.Customers, []core.Record{{"id": int64(1)}}))
		backups, err := s.Backups(core.Customers)
		require.NoError(t, err)
		assert.Empty(t, backups, "first save has nothing to back up")

		require.NoError(t, s.Save(ctx, core.Customers, []core.Record{{"id": int64(1)}, {"id": int64(2)}}))
		backups, err = s.Backups(core.Customers)
		require.NoError(t, err)
		require.Len(t, backups, 1)

		data, err := os.ReadFile(backups[0])
		require.NoError(t, err)
		assert.NotContains(t, string(data), `"id": 2`)
	})

	t.Run("Disabled", func(t *testing.T) {
		s := setupTestStore(t, func(c *Config) { c.DisableBackups = true })

		require.NoError(t, s.Save(ctx, core.Customers, nil))
		require.NoError(t, s.Save(ctx, core.Customers, nil))

		backups, err := s.Backups(core.Customers)
		require.NoError(t, err)
		assert.Empty(t, backups)
	})

	t.Run("Retention Prunes Oldest", func(t *testing.T) {
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		tick := 0
		s := setupTestStore(t, func(c *Config) {
			c.BackupRetention = 2
			c.Clock = func() time.Time {
				tick++
				return base.Add(time.Duration(tick) * time.Second)
			}
		})

		for i := 0; i < 5; i++ {
			require.NoError(t, s.Save(ctx, core.Quotes, []core.Record{{"id": int64(i + 1)}}))
		}

		backups, err := s.Backups(core.Quotes)
		require.NoError(t, err)
		require.Len(t, backups, 2)
		for _, b := range backups {
			assert.Contains(t, filepath.Base(b), "quotes.json.backup.20240501_")
		}
	})

	t.Run("Failure Does Not Abort Save", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		s := setupTestStore(t, func(c *Config) { c.Registerer = reg })
		require.NoError(t, s.Save(ctx, core.Customers, []core.Record{{"id": int64(1)}}))

		// A directory squatting on the backup path makes the copy fail.
		now := time.Now()
		s.config.Clock = func() time.Time { return now }
		squat := s.path(core.Customers) + BackupInfix + now.Format(backupTimeLayout)
		require.NoError(t, os.Mkdir(squat, 0755))

		require.NoError(t, s.Save(ctx, core.Customers, []core.Record{{"id": int64(1)}, {"id": int64(2)}}))

		records, err := s.Load(ctx, core.Customers).Unwrap()
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.backupFailures.WithLabelValues("customers")))
	})
}

func TestPruneBackups_KeepZero(t *testing.T) {
	s := setupTestStore(t, nil)
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("vendors.json%s20240101_00000%d", BackupInfix, i)
		require.NoError(t, os.WriteFile(filepath.Join(s.Path, name), []byte("[]"), 0644))
	}

	removed, err := s.PruneBackups(core.Vendors, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestMetrics_CountOperations(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s := setupTestStore(t, func(c *Config) { c.Registerer = reg })

	s.Load(ctx, core.Quotes)
	require.NoError(t, s.Save(ctx, core.Quotes, nil))
	s.Load(ctx, core.Quotes)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.operations.WithLabelValues("quotes", "load", "not_initialized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.operations.WithLabelValues("quotes", "load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.operations.WithLabelValues("quotes", "save", "ok")))

	// A second store on the same registerer shares the collectors.
	other := NewStore(Config{Path: s.Path, Registerer: reg})
	other.Load(ctx, core.Quotes)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.operations.WithLabelValues("quotes", "load", "ok")))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, nil)

	stats, err := s.Stats(ctx, core.FreightRequests)
	require.NoError(t, err)
	assert.False(t, stats.HasData)
	assert.Nil(t, stats.LastModified)

	require.NoError(t, s.Save(ctx, core.FreightRequests, []core.Record{
		{"id": int64(1), "is_deleted": false},
		{"id": int64(2), "is_deleted": true},
		{"id": int64(3)},
	}))

	stats, err = s.Stats(ctx, core.FreightRequests)
	require.NoError(t, err)
	assert.True(t, stats.HasData)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 2, stats.ActiveItems)
	assert.Equal(t, 1, stats.DeletedItems)
	assert.NotNil(t, stats.LastModified)
	assert.Positive(t, stats.SizeBytes)
}

func TestStats_UnreadableFileDegrades(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t, nil)
	writeRaw(t, s, core.Quotes, `[{"id": 1,`)

	stats, err := s.Stats(ctx, core.Quotes)
	require.NoError(t, err)
	assert.False(t, stats.HasData)
	assert.Zero(t, stats.TotalItems)
	assert.Positive(t, stats.SizeBytes)
	assert.NotNil(t, stats.LastModified)
	assert.NotEmpty(t, stats.LoadError)
}

func TestInitialize_MustExist(t *testing.T) {
	s := NewStore(Config{Path: filepath.Join(t.TempDir(), "nope"), MustExist: true})
	err := s.Initialize(context.Background())
	assert.ErrorIs(t, err, core.ErrStorage)
}

func TestState(t *testing.T) {
	s := setupTestStore(t, func(c *Config) { c.BackupRetention = 3 })
	require.NoError(t, s.Save(context.Background(), core.Customers, nil))

	state, ok := s.State().(StoreState)
	require.True(t, ok)
	assert.Equal(t, s.Path, state.Path)
	assert.Equal(t, 3, state.BackupRetention)
	assert.True(t, state.BackupsEnabled)
	assert.Contains(t, state.LastWrites, "customers")
	assert.Equal(t, "store", s.ComponentType())
}
