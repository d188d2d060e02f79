// Package lifecycle exposes store change events as an aretw0/lifecycle
// source so hosts can react to external edits of the data directory.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/hdx/pkg/core"
)

type storeSource struct {
	events  <-chan core.Event
	filters map[core.EventType]bool
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that forwards collection change
// events. When types are given, only those event types are forwarded.
func NewSource(events <-chan core.Event, types ...core.EventType) lifecycle.Source {
	var filters map[core.EventType]bool
	if len(types) > 0 {
		filters = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			filters[t] = true
		}
	}
	return &storeSource{
		events:  events,
		filters: filters,
		out:     make(chan lifecycle.Event),
	}
}

func (s *storeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the store channel closes.
// core.Event satisfies lifecycle.Event through its String method.
func (s *storeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.filters != nil && !s.filters[e.Type] {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
