package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/pkg/errors"
	"hazboun-backend/tests/fixtures"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "family.db")
	store, err := Open(context.Background(), SQLite, path, "family_members", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_InsertAndFetch(t *testing.T) {
	// Arrange
	store := openTestStore(t)
	ctx := context.Background()
	year := 1955
	ids := []string{"id-1", "id-2"}
	store.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	// Act
	child, err := store.Insert(ctx, entities.MemberDraft{
		Name: "Nadia Hazboun", Location: "Detroit", Country: "United States",
		Branch: "North America Branch", Generation: 3, Parents: []string{"x"}, Email: "nadia@example.com",
	})
	require.NoError(t, err)
	root, err := store.Insert(ctx, entities.MemberDraft{
		Name: "Elias Hazboun", BirthYear: &year, Location: "Bethlehem", Country: "Palestine",
		Branch: "Palestine Branch", Generation: 1,
	})
	require.NoError(t, err)
	members, err := store.FetchAll(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "id-1", child.ID)
	assert.Equal(t, "id-2", root.ID)
	require.Len(t, members, 2)
	assert.Equal(t, "Elias Hazboun", members[0].Name)
	assert.Equal(t, 1955, *members[0].BirthYear)
	assert.Nil(t, members[0].Parents)
	assert.Empty(t, members[0].Email)
	assert.Equal(t, []string{"x"}, members[1].Parents)
	assert.Equal(t, "nadia@example.com", members[1].Email)
}

func TestStore_Update(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	m, err := store.Insert(ctx, entities.MemberDraft{
		Name: "George Hazboun", Location: "Chicago", Country: "USA", Branch: "North America Branch",
		Generation: 2, Profession: "Engineer",
	})
	require.NoError(t, err)

	t.Run("changes only patched columns", func(t *testing.T) {
		city := "Boston"
		empty := ""
		parents := []string{"1", "2"}
		updated, err := store.Update(ctx, m.ID, entities.MemberPatch{Location: &city, Profession: &empty, Parents: &parents})

		require.NoError(t, err)
		assert.Equal(t, "Boston", updated.Location)
		assert.Empty(t, updated.Profession)
		assert.Equal(t, []string{"1", "2"}, updated.Parents)
		assert.Equal(t, "George Hazboun", updated.Name)
	})

	t.Run("missing row", func(t *testing.T) {
		name := "Nobody"
		_, err := store.Update(ctx, "missing", entities.MemberPatch{Name: &name})

		assert.True(t, errors.IsNotFound(err))
	})
}

func TestStore_RemoveAndReplace(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	m, err := store.Insert(ctx, entities.MemberDraft{Name: "A", Location: "B", Country: "C", Branch: "D", Generation: 1})
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, m.ID))
	require.NoError(t, store.Remove(ctx, m.ID))
	members, err := store.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, store.Replace(ctx, fixtures.Family()))
	members, err = store.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, members, len(fixtures.Family()))
	assert.Equal(t, 1, members[0].Generation)
}

func TestStore_PingAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.db")
	ctx := context.Background()

	first, err := Open(ctx, SQLite, path, "family_members", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Ping(ctx))
	_, err = first.Insert(ctx, entities.MemberDraft{Name: "A", Location: "B", Country: "C", Branch: "D", Generation: 1})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, SQLite, path, "family_members", zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = second.Close() }()
	members, err := second.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestOpen_RejectsBadTableName(t *testing.T) {
	_, err := Open(context.Background(), SQLite, filepath.Join(t.TempDir(), "x.db"), "members; DROP", zap.NewNop())

	assert.Error(t, err)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "$3", d.Placeholder(3))

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "?", d.Placeholder(3))

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}
