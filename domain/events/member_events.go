package events

import (
	"time"

	"hazboun-backend/domain/core/entities"
)

// SourceDirectory is the source name attached to published events.
const SourceDirectory = "hazboun.directory"

// Event types
const (
	TypeMemberAdded       = "member.added"
	TypeMemberUpdated     = "member.updated"
	TypeMemberDeleted     = "member.deleted"
	TypeDirectoryImported = "directory.imported"
	TypeDirectoryLoaded   = "directory.loaded"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// MemberAdded is raised after the store accepted a new member.
type MemberAdded struct {
	BaseEvent
	Member entities.FamilyMember `json:"member"`
}

// NewMemberAdded creates a MemberAdded event
func NewMemberAdded(m entities.FamilyMember, timestamp time.Time) MemberAdded {
	return MemberAdded{
		BaseEvent: BaseEvent{AggregateID: m.ID, EventType: TypeMemberAdded, Timestamp: timestamp, Version: 1},
		Member:    m,
	}
}

// MemberUpdated is raised after a member was changed in the store.
type MemberUpdated struct {
	BaseEvent
	Before entities.FamilyMember `json:"before"`
	After  entities.FamilyMember `json:"after"`
}

// NewMemberUpdated creates a MemberUpdated event
func NewMemberUpdated(before, after entities.FamilyMember, timestamp time.Time) MemberUpdated {
	return MemberUpdated{
		BaseEvent: BaseEvent{AggregateID: after.ID, EventType: TypeMemberUpdated, Timestamp: timestamp, Version: 1},
		Before:    before,
		After:     after,
	}
}

// MemberDeleted is raised after a member was removed from the store.
type MemberDeleted struct {
	BaseEvent
	MemberID string `json:"member_id"`
	Name     string `json:"name,omitempty"`
}

// NewMemberDeleted creates a MemberDeleted event
func NewMemberDeleted(id, name string, timestamp time.Time) MemberDeleted {
	return MemberDeleted{
		BaseEvent: BaseEvent{AggregateID: id, EventType: TypeMemberDeleted, Timestamp: timestamp, Version: 1},
		MemberID:  id,
		Name:      name,
	}
}

// DirectoryImported is raised when an uploaded file replaced the session
// directory. The store is not touched by an import.
type DirectoryImported struct {
	BaseEvent
	Count int `json:"count"`
}

// NewDirectoryImported creates a DirectoryImported event
func NewDirectoryImported(count int, timestamp time.Time) DirectoryImported {
	return DirectoryImported{
		BaseEvent: BaseEvent{AggregateID: "directory", EventType: TypeDirectoryImported, Timestamp: timestamp, Version: 1},
		Count:     count,
	}
}

// DirectoryLoaded is raised when a fetch from the store replaced the directory.
type DirectoryLoaded struct {
	BaseEvent
	Count int `json:"count"`
}

// NewDirectoryLoaded creates a DirectoryLoaded event
func NewDirectoryLoaded(count int, timestamp time.Time) DirectoryLoaded {
	return DirectoryLoaded{
		BaseEvent: BaseEvent{AggregateID: "directory", EventType: TypeDirectoryLoaded, Timestamp: timestamp, Version: 1},
		Count:     count,
	}
}
