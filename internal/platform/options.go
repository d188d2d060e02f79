package platform

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/hdx/pkg/core"
)

// options holds the internal configuration for an hdx service.
type options struct {
	store           core.Store
	logger          *slog.Logger
	registerer      prometheus.Registerer
	clock           func() time.Time
	mustExist       bool
	disableBackups  bool
	backupRetention int
	strictIDs       bool
	eventBuffer     int
	errorHandler    func(error)
}

// Option defines a functional option for configuring hdx.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger for the store and service.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom core.Store. If provided, the filesystem store
// is not created and filesystem-only options are ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithRegisterer registers store metrics on reg instead of a private
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithClock sets the time source for soft-delete and creation stamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithMustExist ensures the data directory must already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithBackups enables or disables the copy taken before every save.
// Backups are enabled by default.
func WithBackups(enabled bool) Option {
	return func(o *options) {
		o.disableBackups = !enabled
	}
}

// WithBackupRetention keeps at most n backups per collection. Zero keeps
// all of them.
func WithBackupRetention(n int) Option {
	return func(o *options) {
		o.backupRetention = n
	}
}

// WithStrictIDs rejects appends that would duplicate an existing id.
func WithStrictIDs(strict bool) Option {
	return func(o *options) {
		o.strictIDs = strict
	}
}

// WithEventBuffer sets the buffer of the watch event channel.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside
// the watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
