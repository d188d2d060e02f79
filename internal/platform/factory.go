package platform

import (
	"github.com/aretw0/hdx/pkg/service"
)

// New builds a service over the data directory.
//
//	svc, err := hdx.Open("./data", hdx.WithBackupRetention(10))
func New(dataDir string, opts ...Option) (*service.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store, err := initStore(dataDir, o)
	if err != nil {
		return nil, err
	}

	return service.New(store, service.Config{
		Logger:    o.logger,
		Clock:     o.clock,
		StrictIDs: o.strictIDs,
	}), nil
}
