package fs

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hdx/pkg/core"
)

func TestToEvent(t *testing.T) {
	s := setupTestStore(t, nil)

	tests := []struct {
		name    string
		event   fsnotify.Event
		pattern string
		want    core.EventType
		ok      bool
	}{
		{"Write Is Modify", fsnotify.Event{Name: s.path(core.Quotes), Op: fsnotify.Write}, "*", core.EventModify, true},
		{"Create", fsnotify.Event{Name: s.path(core.Projects), Op: fsnotify.Create}, "*", core.EventCreate, true},
		{"Rename Is Delete", fsnotify.Event{Name: s.path(core.Vendors), Op: fsnotify.Rename}, "*", core.EventDelete, true},
		{"Pattern Filters", fsnotify.Event{Name: s.path(core.Quotes), Op: fsnotify.Write}, "{customers,projects}", "", false},
		{"Temp File Ignored", fsnotify.Event{Name: s.Path + "/" + TempFilePrefix + "123", Op: fsnotify.Create}, "*", "", false},
		{"Backup Ignored", fsnotify.Event{Name: s.path(core.Quotes) + BackupInfix + "20240101_000000", Op: fsnotify.Create}, "*", "", false},
		{"Unknown Collection Ignored", fsnotify.Event{Name: s.Path + "/invoices.json", Op: fsnotify.Write}, "*", "", false},
		{"Chmod Ignored", fsnotify.Event{Name: s.path(core.Quotes), Op: fsnotify.Chmod}, "*", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.toEvent(tt.event, tt.pattern)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.Type)
			}
		})
	}
}

func TestWatch_InvalidPattern(t *testing.T) {
	s := setupTestStore(t, nil)
	_, err := s.Watch(context.Background(), "[")
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestWatch_ReportsSaves(t *testing.T) {
	s := setupTestStore(t, func(c *Config) { c.DisableBackups = true })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "customers")
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, core.Customers, []core.Record{{"id": int64(1)}}))

	select {
	case e := <-events:
		assert.Equal(t, core.Customers, e.Collection)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond, "events channel should close on cancel")
}

func TestWatch_ConcurrentWatchersTracked(t *testing.T) {
	s := setupTestStore(t, nil)
	state := func() StoreState { return s.State().(StoreState) }

	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()

	_, err := s.Watch(ctx1, "*")
	require.NoError(t, err)
	_, err = s.Watch(ctx2, "quotes")
	require.NoError(t, err)
	assert.Equal(t, 2, state().Watchers)
	assert.True(t, state().WatcherActive)

	cancel1()
	require.Eventually(t, func() bool { return state().Watchers == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.True(t, state().WatcherActive, "second watcher is still running")

	cancel2()
	require.Eventually(t, func() bool { return !state().WatcherActive }, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, state().Watchers)
}
