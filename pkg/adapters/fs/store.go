// Package fs implements core.Store on the local filesystem: one JSON array
// file per collection inside a data directory.
package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/hdx/pkg/core"
)

// Config holds the configuration for the filesystem store.
type Config struct {
	Path            string
	MustExist       bool
	Logger          *slog.Logger
	DisableBackups  bool
	BackupRetention int                   // Backups kept per collection after a save. Zero keeps all.
	Registerer      prometheus.Registerer // Defaults to a private registry.
	EventBuffer     int
	Clock           func() time.Time
	ErrorHandler    func(error) // Receives watcher errors.
}

// Store implements core.Store using JSON files.
//
// Writes are serialized by a single process-wide lock held for the whole
// load-modify-save cycle. Reads take no lock and may observe the previous
// version of a file.
type Store struct {
	Path    string
	config  Config
	logger  *slog.Logger
	metrics *metrics

	writeMu sync.Mutex

	mu            sync.RWMutex
	watchers      int
	lastWrite     map[core.Collection]time.Time
}

// NewStore creates a new filesystem-backed store.
func NewStore(config Config) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = 100
	}
	reg := config.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Store{
		Path:      config.Path,
		config:    config,
		logger:    logger,
		metrics:   newMetrics(reg),
		lastWrite: make(map[core.Collection]time.Time),
	}
}

// Initialize ensures the data directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return core.NewStorageError("initialize", "", fmt.Errorf("data directory does not exist: %s", s.Path))
		}
		if err != nil {
			return core.NewStorageError("initialize", "", err)
		}
		if !info.IsDir() {
			return core.NewStorageError("initialize", "", fmt.Errorf("data path is not a directory: %s", s.Path))
		}
		return nil
	}
	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return core.NewStorageError("initialize", "", fmt.Errorf("failed to create data directory: %w", err))
	}
	return nil
}

func (s *Store) path(c core.Collection) string {
	return filepath.Join(s.Path, c.Filename())
}

func (s *Store) now() time.Time {
	return s.config.Clock()
}

func unknownCollection(op string, c core.Collection) error {
	return core.NewValidationError(op, "collection", string(c), fmt.Sprintf("unknown collection %q", c))
}

// Load reads a full collection. A missing file is reported as
// core.LoadNotInitialized, never as a failure.
func (s *Store) Load(ctx context.Context, c core.Collection) core.LoadResult {
	if !c.Valid() {
		return core.LoadFailed(core.LoadInvalidFormat, unknownCollection("read", c))
	}

	data, err := os.ReadFile(s.path(c))
	if err != nil {
		if os.IsNotExist(err) {
			s.metrics.observe(c, "load", "not_initialized")
			return core.NotInitialized()
		}
		s.metrics.observe(c, "load", "error")
		return core.LoadFailed(core.LoadIOFailure, core.NewStorageError("read", c, fmt.Errorf("%w: %w", core.ErrStorageRead, err)))
	}

	records, status, err := decodeCollection(data)
	if err != nil {
		s.metrics.observe(c, "load", "error")
		if status == core.LoadInvalidFormat {
			return core.LoadFailed(status, &core.Error{
				Kind:       core.KindValidation,
				Op:         "read",
				Collection: c,
				Message:    fmt.Sprintf("invalid data format in %s", c.Filename()),
				Details:    map[string]any{"operation": "read", "filename": c.Filename()},
				Err:        err,
			})
		}
		return core.LoadFailed(status, core.NewStorageError("read", c, err))
	}

	s.metrics.observe(c, "load", "ok")
	return core.Loaded(records)
}

// Save replaces a full collection. The previous file is copied to a
// timestamped backup first; backup failures are logged and ignored.
func (s *Store) Save(ctx context.Context, c core.Collection, records []core.Record) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.save(c, records)
}

// save must be called with writeMu held.
func (s *Store) save(c core.Collection, records []core.Record) error {
	if !c.Valid() {
		return unknownCollection("write", c)
	}

	data, err := encodeCollection(records)
	if err != nil {
		s.metrics.observe(c, "save", "error")
		return core.NewStorageError("write", c, fmt.Errorf("%w: %w", core.ErrStorageWrite, err))
	}

	if !s.config.DisableBackups {
		s.backup(c)
	}

	if err := replaceFile(s.path(c), data); err != nil {
		s.metrics.observe(c, "save", "error")
		return core.NewStorageError("write", c, fmt.Errorf("%w: %w", core.ErrStorageWrite, err))
	}
	s.metrics.observe(c, "save", "ok")
	s.recordWrite(c)

	if s.config.BackupRetention > 0 {
		if _, err := s.PruneBackups(c, s.config.BackupRetention); err != nil {
			s.logger.Warn("failed to prune backups", "collection", c, "error", err)
		}
	}
	return nil
}

// Mutate runs fn against the current records and persists its result, all
// under the write lock so concurrent writers cannot lose each other's
// updates.
func (s *Store) Mutate(ctx context.Context, c core.Collection, fn core.MutateFunc) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, err := s.Load(ctx, c).Unwrap()
	if err != nil {
		return false, err
	}

	out, changed, err := fn(records)
	if err != nil || !changed {
		return false, err
	}

	if err := s.save(c, out); err != nil {
		return false, err
	}
	return true, nil
}

// NextID returns one more than the highest id in the collection, counting
// soft-deleted records, or 1 when the collection is empty or absent.
func (s *Store) NextID(ctx context.Context, c core.Collection) (int64, error) {
	records, err := s.Load(ctx, c).Unwrap()
	if err != nil {
		return 0, err
	}
	return NextID(records), nil
}

// NextID computes the next id for an in-memory collection.
func NextID(records []core.Record) int64 {
	var max int64
	for _, r := range records {
		if id, ok := r.ID(); ok && id > max {
			max = id
		}
	}
	return max + 1
}

func (s *Store) recordWrite(c core.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastWrite[c] = s.now()
}

var _ core.Store = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
var _ core.Inspectable = (*Store)(nil)
var _ core.Backupable = (*Store)(nil)
