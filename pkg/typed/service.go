// Package typed offers a type-safe view of hdx collections on top of the
// record-based service.
package typed

import (
	"context"
	"fmt"

	"github.com/aretw0/hdx/pkg/cascade"
	"github.com/aretw0/hdx/pkg/core"
	"github.com/aretw0/hdx/pkg/service"
)

// Entity is a typed record: its id plus the decoded fields.
type Entity[T any] struct {
	ID    int64
	Data  T
	Saver Saver[T] // Active Record reference
}

// Saver persists an entity. Service implements it.
type Saver[T any] interface {
	Save(ctx context.Context, e *Entity[T]) error
}

// Save persists the entity through its attached saver.
func (e *Entity[T]) Save(ctx context.Context) error {
	if e.Saver == nil {
		return fmt.Errorf("entity is detached (missing Saver)")
	}
	return e.Saver.Save(ctx, e)
}

// Service wraps a service.Service for one collection.
type Service[T any] struct {
	svc *service.Service
	c   core.Collection
}

// NewService creates a typed view of collection c.
func NewService[T any](svc *service.Service, c core.Collection) *Service[T] {
	return &Service[T]{svc: svc, c: c}
}

func Customers(svc *service.Service) *Service[Customer] {
	return NewService[Customer](svc, core.Customers)
}

func Projects(svc *service.Service) *Service[Project] {
	return NewService[Project](svc, core.Projects)
}

func Quotes(svc *service.Service) *Service[Quote] {
	return NewService[Quote](svc, core.Quotes)
}

func FreightRequests(svc *service.Service) *Service[FreightRequest] {
	return NewService[FreightRequest](svc, core.FreightRequests)
}

func Vendors(svc *service.Service) *Service[Vendor] {
	return NewService[Vendor](svc, core.Vendors)
}

func VendorQuotes(svc *service.Service) *Service[VendorQuote] {
	return NewService[VendorQuote](svc, core.VendorQuotes)
}

func (s *Service[T]) wrap(rec core.Record) (*Entity[T], error) {
	data, err := fromRecord[T](rec)
	if err != nil {
		return nil, err
	}
	id, _ := rec.ID()
	return &Entity[T]{ID: id, Data: data, Saver: s}, nil
}

func (s *Service[T]) wrapAll(records []core.Record) ([]*Entity[T], error) {
	out := make([]*Entity[T], 0, len(records))
	for _, rec := range records {
		e, err := s.wrap(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Get retrieves an active entity.
func (s *Service[T]) Get(ctx context.Context, id int64) (*Entity[T], error) {
	rec, err := s.svc.Get(ctx, s.c, id)
	if err != nil {
		return nil, err
	}
	return s.wrap(rec)
}

// List retrieves every active entity in file order.
func (s *Service[T]) List(ctx context.Context) ([]*Entity[T], error) {
	records, err := s.svc.List(ctx, s.c, false)
	if err != nil {
		return nil, err
	}
	return s.wrapAll(records)
}

// ListByParent retrieves the active entities owned by parentID.
func (s *Service[T]) ListByParent(ctx context.Context, parentID int64) ([]*Entity[T], error) {
	records, err := s.svc.ListByParent(ctx, s.c, parentID)
	if err != nil {
		return nil, err
	}
	return s.wrapAll(records)
}

// Create stores data as a new entity.
func (s *Service[T]) Create(ctx context.Context, data T) (*Entity[T], error) {
	fields, err := toFields(s.c, data, false)
	if err != nil {
		return nil, err
	}
	rec, err := s.svc.Create(ctx, s.c, fields)
	if err != nil {
		return nil, err
	}
	return s.wrap(rec)
}

// Save creates e when it has no id yet, otherwise updates its non-zero
// fields. e is refreshed with the stored state.
func (s *Service[T]) Save(ctx context.Context, e *Entity[T]) error {
	if e.ID == 0 {
		created, err := s.Create(ctx, e.Data)
		if err != nil {
			return err
		}
		*e = *created
		return nil
	}

	fields, err := toFields(s.c, e.Data, true)
	if err != nil {
		return err
	}
	rec, err := s.svc.Update(ctx, s.c, e.ID, fields)
	if err != nil {
		return err
	}
	updated, err := s.wrap(rec)
	if err != nil {
		return err
	}
	*e = *updated
	return nil
}

// Delete soft-deletes the entity and its descendants.
func (s *Service[T]) Delete(ctx context.Context, id int64) (*cascade.Report, error) {
	return s.svc.Delete(ctx, s.c, id)
}
