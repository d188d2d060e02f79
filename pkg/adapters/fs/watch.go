package fs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/hdx/pkg/core"
)

// Watch observes the data directory and emits an event whenever a
// collection file matching pattern changes. Patterns use doublestar syntax
// against collection names (e.g. "*", "quotes", "{projects,quotes}").
// The returned channel is closed when ctx is cancelled.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, core.NewValidationError("watch", "pattern", pattern, fmt.Sprintf("invalid watch pattern %q", pattern))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	events := make(chan core.Event, s.config.EventBuffer)
	s.trackWatcher(1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer s.trackWatcher(-1)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return nil

			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				e, ok := s.toEvent(ev, pattern)
				if !ok {
					continue
				}
				s.logger.Debug("collection changed", "collection", e.Collection, "type", e.Type)
				select {
				case events <- e:
				case <-ctx.Done():
					return nil
				}

			case werr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				s.logger.Error("fsnotify error", "error", werr)
				if s.config.ErrorHandler != nil {
					s.config.ErrorHandler(werr)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("watcher panic", "error", err)
		if s.config.ErrorHandler != nil {
			s.config.ErrorHandler(fmt.Errorf("watcher panic: %w", err))
		}
	}))

	return events, nil
}

// toEvent maps a filesystem event to a collection event. Temp files and
// backups are ignored.
func (s *Store) toEvent(ev fsnotify.Event, pattern string) (core.Event, bool) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, TempFilePrefix) || strings.Contains(name, BackupInfix) {
		return core.Event{}, false
	}
	if filepath.Ext(name) != ".json" {
		return core.Event{}, false
	}

	c := core.Collection(strings.TrimSuffix(name, ".json"))
	if !c.Valid() {
		return core.Event{}, false
	}
	if ok, _ := doublestar.Match(pattern, string(c)); !ok {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case ev.Has(fsnotify.Create):
		t = core.EventCreate
	case ev.Has(fsnotify.Write):
		t = core.EventModify
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}

	return core.Event{Type: t, Collection: c, Timestamp: time.Now().Unix()}, true
}
