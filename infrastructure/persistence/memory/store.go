// Package memory implements the member store in process memory. It backs
// local development and tests, optionally seeded from an exported file.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"hazboun-backend/application/services"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/pkg/errors"
)

// Store is an in-memory member store safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	members map[string]entities.FamilyMember
	order   []string
	newID   func() string

	// Unreachable makes every call fail, to exercise connectivity errors.
	unreachable bool
}

// NewStore creates an empty store holding seed.
func NewStore(seed ...entities.FamilyMember) *Store {
	s := &Store{members: make(map[string]entities.FamilyMember), newID: uuid.NewString}
	for _, m := range seed {
		m = m.Normalize()
		if m.ID == "" {
			m.ID = s.newID()
		}
		s.put(m)
	}
	return s
}

// LoadFile creates a store seeded from an exported directory file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	members, err := services.DecodeDirectory(data)
	if err != nil {
		return nil, err
	}
	return NewStore(members...), nil
}

// SetUnreachable toggles simulated connectivity loss.
func (s *Store) SetUnreachable(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreachable = down
}

func (s *Store) Ping(ctx context.Context) error {
	return s.check(ctx, "ping")
}

// FetchAll returns copies of all members ordered by generation, then by
// insertion order.
func (s *Store) FetchAll(ctx context.Context) ([]entities.FamilyMember, error) {
	if err := s.check(ctx, "fetch"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.FamilyMember, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.members[id].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (s *Store) Insert(ctx context.Context, draft entities.MemberDraft) (entities.FamilyMember, error) {
	if err := s.check(ctx, "insert"); err != nil {
		return entities.FamilyMember{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := draft.WithID(s.newID())
	s.put(m)
	return m.Clone(), nil
}

func (s *Store) Update(ctx context.Context, id string, patch entities.MemberPatch) (entities.FamilyMember, error) {
	if err := s.check(ctx, "update"); err != nil {
		return entities.FamilyMember{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.members[id]
	if !ok {
		return entities.FamilyMember{}, errors.NewNotFoundError("family member")
	}
	updated := patch.Apply(current)
	s.members[id] = updated
	return updated.Clone(), nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.check(ctx, "delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return nil
	}
	delete(s.members, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored members.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) put(m entities.FamilyMember) {
	if _, exists := s.members[m.ID]; !exists {
		s.order = append(s.order, m.ID)
	}
	s.members[m.ID] = m
}

func (s *Store) check(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreError(operation, err.Error(), err)
	}
	s.mu.RLock()
	down := s.unreachable
	s.mu.RUnlock()
	if down {
		return errors.NewStoreError(operation, "store is unreachable", nil)
	}
	return nil
}
