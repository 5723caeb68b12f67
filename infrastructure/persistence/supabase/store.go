// Package supabase implements the member store on a Supabase project through
// its PostgREST API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/infrastructure/persistence"
	"hazboun-backend/pkg/errors"
)

// QueryClient starts PostgREST queries. *supabase.Client and
// *postgrest.Client both satisfy it.
type QueryClient interface {
	From(table string) *postgrest.QueryBuilder
}

// Store is the Supabase-backed member store.
type Store struct {
	client QueryClient
	table  string
	logger *zap.Logger
}

// NewClient connects to a Supabase project with its anonymous key.
func NewClient(url, anonKey string) (*supa.Client, error) {
	client, err := supa.NewClient(url, anonKey, &supa.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}

// NewStore creates a store over table.
func NewStore(client QueryClient, table string, logger *zap.Logger) *Store {
	return &Store{client: client, table: table, logger: logger}
}

// Ping runs a head-only count query, the cheapest round trip PostgREST offers.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreError("ping", err.Error(), err)
	}
	_, _, err := s.client.From(s.table).Select("count", "exact", true).Execute()
	if err != nil {
		return storeError("ping", err)
	}
	return nil
}

// FetchAll returns every member ordered by generation ascending.
func (s *Store) FetchAll(ctx context.Context) ([]entities.FamilyMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreError("fetch", err.Error(), err)
	}
	body, _, err := s.client.From(s.table).
		Select("*", "", false).
		Order(persistence.ColGeneration, &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, storeError("fetch", err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, errors.NewStoreError("fetch", "unexpected response from store", err)
	}
	members := make([]entities.FamilyMember, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.ToMember())
	}
	s.logger.Debug("Fetched family members", zap.Int("count", len(members)))
	return members, nil
}

// Insert stores a draft and returns the row the store created.
func (s *Store) Insert(ctx context.Context, draft entities.MemberDraft) (entities.FamilyMember, error) {
	if err := ctx.Err(); err != nil {
		return entities.FamilyMember{}, errors.NewStoreError("insert", err.Error(), err)
	}
	body, _, err := s.client.From(s.table).
		Insert(persistence.RowFromDraft(draft), false, "", "representation", "").
		Execute()
	if err != nil {
		return entities.FamilyMember{}, storeError("insert", err)
	}
	return firstRow("insert", body)
}

// Update applies a patch to the row with id.
func (s *Store) Update(ctx context.Context, id string, patch entities.MemberPatch) (entities.FamilyMember, error) {
	if err := ctx.Err(); err != nil {
		return entities.FamilyMember{}, errors.NewStoreError("update", err.Error(), err)
	}
	body, _, err := s.client.From(s.table).
		Update(persistence.PatchColumns(patch), "representation", "").
		Eq(persistence.ColID, id).
		Execute()
	if err != nil {
		return entities.FamilyMember{}, storeError("update", err)
	}
	return firstRow("update", body)
}

// Remove deletes the row with id.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreError("delete", err.Error(), err)
	}
	_, _, err := s.client.From(s.table).
		Delete("minimal", "").
		Eq(persistence.ColID, id).
		Execute()
	if err != nil {
		return storeError("delete", err)
	}
	return nil
}

func decodeRows(body []byte) ([]persistence.MemberRow, error) {
	var rows []persistence.MemberRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func firstRow(operation string, body []byte) (entities.FamilyMember, error) {
	rows, err := decodeRows(body)
	if err != nil {
		return entities.FamilyMember{}, errors.NewStoreError(operation, "unexpected response from store", err)
	}
	if len(rows) == 0 {
		return entities.FamilyMember{}, errors.NewNotFoundError("family member")
	}
	return rows[0].ToMember(), nil
}

// storeError keeps PostgREST's message and moves its "(code)" prefix into
// the error details.
func storeError(operation string, err error) error {
	msg, code := splitCode(err.Error())
	e := errors.NewStoreError(operation, msg, err)
	if code != "" {
		e.WithDetails(map[string]interface{}{"code": code})
	}
	return e
}

func splitCode(msg string) (string, string) {
	if strings.HasPrefix(msg, "(") {
		if end := strings.Index(msg, ") "); end > 0 {
			return msg[end+2:], msg[1:end]
		}
	}
	return msg, ""
}
