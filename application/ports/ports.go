package ports

import (
	"context"

	"hazboun-backend/domain/config"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/events"
)

// MemberStore is the remote table holding family members.
// This is a port in hexagonal architecture - the application doesn't know
// whether it talks to Supabase, Postgres, SQLite or memory.
type MemberStore interface {
	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// FetchAll returns every member ordered by generation ascending.
	FetchAll(ctx context.Context) ([]entities.FamilyMember, error)

	// Insert stores a new member and returns it with the id the store assigned.
	Insert(ctx context.Context, draft entities.MemberDraft) (entities.FamilyMember, error)

	// Update applies a partial update and returns the stored result.
	Update(ctx context.Context, id string, patch entities.MemberPatch) (entities.FamilyMember, error)

	// Remove deletes a member.
	Remove(ctx context.Context, id string) error
}

// EventPublisher publishes domain events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// ExportArchive keeps copies of exported directory snapshots.
type ExportArchive interface {
	// Put stores body under key and returns where it ended up.
	Put(ctx context.Context, key string, body []byte) (string, error)
}

// CatalogProvider returns the domain catalog currently in force. The catalog
// can be swapped at runtime, so callers fetch it per request.
type CatalogProvider interface {
	Current() *config.DomainConfig
}

// Cache is used by the query bus to memoize read views.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl int) error
	Clear(ctx context.Context) error
}
