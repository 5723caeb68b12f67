package decorators

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hazboun-backend/application/ports"
	"hazboun-backend/domain/core/entities"
)

// StoreObserver records the outcome of store calls.
type StoreObserver interface {
	ObserveStore(operation string, duration time.Duration, err error)
}

// InstrumentedStore traces every store call and reports it to an observer.
type InstrumentedStore struct {
	next     ports.MemberStore
	tracer   trace.Tracer
	observer StoreObserver
	backend  string
}

// NewInstrumentedStore wraps next. observer may be nil.
func NewInstrumentedStore(next ports.MemberStore, backend string, tracer trace.Tracer, observer StoreObserver) *InstrumentedStore {
	return &InstrumentedStore{next: next, tracer: tracer, observer: observer, backend: backend}
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	ctx, done := s.start(ctx, "ping")
	err := s.next.Ping(ctx)
	done(err)
	return err
}

func (s *InstrumentedStore) FetchAll(ctx context.Context) ([]entities.FamilyMember, error) {
	ctx, done := s.start(ctx, "fetch")
	members, err := s.next.FetchAll(ctx)
	if err == nil {
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("members.count", len(members)))
	}
	done(err)
	return members, err
}

func (s *InstrumentedStore) Insert(ctx context.Context, draft entities.MemberDraft) (entities.FamilyMember, error) {
	ctx, done := s.start(ctx, "insert")
	m, err := s.next.Insert(ctx, draft)
	if err == nil {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("member.id", m.ID))
	}
	done(err)
	return m, err
}

func (s *InstrumentedStore) Update(ctx context.Context, id string, patch entities.MemberPatch) (entities.FamilyMember, error) {
	ctx, done := s.start(ctx, "update", attribute.String("member.id", id))
	m, err := s.next.Update(ctx, id, patch)
	done(err)
	return m, err
}

func (s *InstrumentedStore) Remove(ctx context.Context, id string) error {
	ctx, done := s.start(ctx, "delete", attribute.String("member.id", id))
	err := s.next.Remove(ctx, id)
	done(err)
	return err
}

func (s *InstrumentedStore) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	attrs = append(attrs, attribute.String("store.backend", s.backend), attribute.String("store.operation", operation))
	ctx, span := s.tracer.Start(ctx, "store."+operation, trace.WithAttributes(attrs...))
	began := time.Now()
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.observer != nil {
			s.observer.ObserveStore(operation, time.Since(began), err)
		}
	}
}
