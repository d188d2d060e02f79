package platform

import (
	"context"

	"github.com/aretw0/hdx/pkg/adapters/fs"
	"github.com/aretw0/hdx/pkg/core"
)

// Init prepares the store for dataDir. An injected store is returned as
// is; otherwise a filesystem store is created and its directory ensured.
func Init(dataDir string, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initStore(dataDir, o)
}

func initStore(dataDir string, o *options) (core.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	store := fs.NewStore(fs.Config{
		Path:            dataDir,
		MustExist:       o.mustExist,
		Logger:          o.logger,
		DisableBackups:  o.disableBackups,
		BackupRetention: o.backupRetention,
		Registerer:      o.registerer,
		EventBuffer:     o.eventBuffer,
		Clock:           o.clock,
		ErrorHandler:    o.errorHandler,
	})
	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	if o.logger != nil {
		o.logger.Debug("store ready", "path", dataDir, "backups", !o.disableBackups, "retention", o.backupRetention)
	}
	return store, nil
}
