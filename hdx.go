package hdx

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/hdx/internal/platform"
	"github.com/aretw0/hdx/pkg/core"
	"github.com/aretw0/hdx/pkg/service"
	"github.com/aretw0/hdx/pkg/typed"
)

// --- Types ---

// Service is a public alias for the hdx application service.
type Service = service.Service

// Record is a public alias for a stored record.
type Record = core.Record

// Collection is a public alias for a collection name.
type Collection = core.Collection

// Entity is a public alias for a typed record wrapper.
type Entity[T any] = typed.Entity[T]

// TypedService is a public alias for the typed service.
type TypedService[T any] = typed.Service[T]

// Collections.
const (
	Customers       = core.Customers
	Projects        = core.Projects
	Quotes          = core.Quotes
	FreightRequests = core.FreightRequests
	Vendors         = core.Vendors
	VendorQuotes    = core.VendorQuotes
)

// --- Configuration ---

// Option defines a functional option for configuring hdx.
type Option = platform.Option

// Config is the file and environment configuration of hdx.
type Config = platform.Config

// LoadConfig reads an optional YAML file, a .env file and HDX_* variables.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// FindConfig looks upwards from dir for hdx.yaml.
func FindConfig(dir string) (string, error) {
	return platform.FindConfig(dir)
}

// WithLogger sets the logger for the store and service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithRegisterer registers store metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return platform.WithRegisterer(reg)
}

// WithClock sets the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithBackups enables or disables the backup taken before each save.
func WithBackups(enabled bool) Option {
	return platform.WithBackups(enabled)
}

// WithBackupRetention sets how many backups are kept per collection.
func WithBackupRetention(n int) Option {
	return platform.WithBackupRetention(n)
}

// WithStrictIDs rejects appends that would duplicate an existing id.
func WithStrictIDs(strict bool) Option {
	return platform.WithStrictIDs(strict)
}

// WithEventBuffer sets the size of the watch event channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithWatcherErrorHandler receives errors from the file watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// Init prepares the store for dataDir without building a service. The
// result can be shared between services through WithStore.
func Init(dataDir string, opts ...Option) (core.Store, error) {
	return platform.Init(dataDir, opts...)
}

// Open creates a Service over the data directory.
func Open(dataDir string, opts ...Option) (*Service, error) {
	return platform.New(dataDir, opts...)
}

// OpenConfig creates a Service from a loaded Config. Extra options are
// applied after the ones derived from cfg.
func OpenConfig(cfg Config, opts ...Option) (*Service, error) {
	return platform.New(cfg.DataDir, append(cfg.Options(), opts...)...)
}
