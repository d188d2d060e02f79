package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path            string               `json:"path"`
	MustExist       bool                 `json:"must_exist"`
	BackupsEnabled  bool                 `json:"backups_enabled"`
	BackupRetention int                  `json:"backup_retention"`
	WatcherActive   bool                 `json:"watcher_active"`
	Watchers        int                  `json:"watchers"`
	LastWrites      map[string]time.Time `json:"last_writes,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	writes := make(map[string]time.Time, len(s.lastWrite))
	for c, t := range s.lastWrite {
		writes[string(c)] = t
	}

	return StoreState{
		Path:            s.Path,
		MustExist:       s.config.MustExist,
		BackupsEnabled:  !s.config.DisableBackups,
		BackupRetention: s.config.BackupRetention,
		WatcherActive:   s.watchers > 0,
		Watchers:        s.watchers,
		LastWrites:      writes,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

// trackWatcher counts running watchers; delta is +1 on start, -1 on stop.
func (s *Store) trackWatcher(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers += delta
}
