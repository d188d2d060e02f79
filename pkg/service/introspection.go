package service

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/hdx/pkg/core"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType   string   `json:"store_type"`
	StrictIDs   bool     `json:"strict_ids"`
	Collections []string `json:"collections"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	storeType := "unknown"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	var names []string
	for _, c := range core.Collections() {
		names = append(names, string(c))
	}

	return ServiceState{
		StoreType:   storeType,
		StrictIDs:   s.strict,
		Collections: names,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
