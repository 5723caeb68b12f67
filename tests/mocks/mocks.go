// Package mocks holds testify mocks for the application ports.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/events"
)

// MockMemberStore mocks ports.MemberStore.
type MockMemberStore struct {
	mock.Mock
}

func (m *MockMemberStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMemberStore) FetchAll(ctx context.Context) ([]entities.FamilyMember, error) {
	args := m.Called(ctx)
	if members, ok := args.Get(0).([]entities.FamilyMember); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMemberStore) Insert(ctx context.Context, draft entities.MemberDraft) (entities.FamilyMember, error) {
	args := m.Called(ctx, draft)
	if member, ok := args.Get(0).(entities.FamilyMember); ok {
		return member, args.Error(1)
	}
	return entities.FamilyMember{}, args.Error(1)
}

func (m *MockMemberStore) Update(ctx context.Context, id string, patch entities.MemberPatch) (entities.FamilyMember, error) {
	args := m.Called(ctx, id, patch)
	if member, ok := args.Get(0).(entities.FamilyMember); ok {
		return member, args.Error(1)
	}
	return entities.FamilyMember{}, args.Error(1)
}

func (m *MockMemberStore) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventPublisher mocks ports.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// RecordingPublisher keeps every published event. Useful when a test only
// cares about what was emitted.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.DomainEvent
}

func (p *RecordingPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = p.Publish(ctx, e)
	}
	return nil
}

// Types returns the event types in publish order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.GetEventType())
	}
	return out
}
