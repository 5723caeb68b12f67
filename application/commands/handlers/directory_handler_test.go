package handlers

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/state"
	"hazboun-backend/pkg/errors"
	"hazboun-backend/tests/fixtures"
	"hazboun-backend/tests/mocks"
)

type stubLoader struct {
	calls int
	err   error
}

func (l *stubLoader) Load(context.Context) error {
	l.calls++
	return l.err
}

type memoryArchive struct {
	objects map[string][]byte
	err     error
}

func (a *memoryArchive) Put(_ context.Context, key string, body []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.objects[key] = body
	return "mem://" + key, nil
}

func TestDirectoryHandler_HandleImport(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the directory", func(t *testing.T) {
		publisher := new(mocks.RecordingPublisher)
		dir := readyDirectory(fixtures.Family())
		h := NewDirectoryHandler(dir, &stubLoader{}, nil, fixtures.Catalog(), publisher, zap.NewNop())

		res, err := h.HandleImport(ctx, commands.ImportDirectoryCommand{Data: []byte(`[{"id":"a","name":"Imported"}]`)})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Imported)
		assert.Equal(t, errors.MessageImportSuccess, res.Message)
		snap := dir.Snapshot()
		require.Len(t, snap, 1)
		assert.Equal(t, "Imported", snap[0].Name)
		assert.Equal(t, []string{"directory.imported"}, publisher.Types())
	})

	t.Run("non-array leaves the directory unchanged", func(t *testing.T) {
		dir := readyDirectory(fixtures.Family())
		h := NewDirectoryHandler(dir, &stubLoader{}, nil, fixtures.Catalog(), nil, zap.NewNop())
		before := dir.Version()

		_, err := h.HandleImport(ctx, commands.ImportDirectoryCommand{Data: []byte(`{"members":[]}`)})

		assert.True(t, errors.IsType(err, errors.ErrorTypeImportFormat))
		assert.Len(t, dir.Snapshot(), 5)
		assert.Equal(t, before, dir.Version())
	})

	t.Run("import works before the first load finishes", func(t *testing.T) {
		dir := state.NewDirectory()
		ticket := dir.BeginLoad()
		h := NewDirectoryHandler(dir, &stubLoader{}, nil, fixtures.Catalog(), nil, zap.NewNop())

		_, err := h.HandleImport(ctx, commands.ImportDirectoryCommand{Data: []byte(`[]`)})

		require.NoError(t, err)
		assert.NoError(t, dir.Ready())
		assert.False(t, dir.CompleteLoad(ticket, fixtures.Family()))
	})
}

func TestDirectoryHandler_HandleReload(t *testing.T) {
	ctx := context.Background()
	loadErr := errors.NewConnectivityError(stderrors.New("refused"))

	loader := &stubLoader{err: loadErr}
	h := NewDirectoryHandler(state.NewDirectory(), loader, nil, fixtures.Catalog(), nil, zap.NewNop())

	_, err := h.HandleReload(ctx, commands.ReloadDirectoryCommand{})
	assert.Equal(t, loadErr, err)

	loader.err = nil
	_, err = h.HandleReload(ctx, commands.ReloadDirectoryCommand{})
	assert.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestDirectoryHandler_HandleArchive(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	t.Run("stores the export bytes", func(t *testing.T) {
		archive := &memoryArchive{objects: map[string][]byte{}}
		h := NewDirectoryHandler(readyDirectory(fixtures.Family()), &stubLoader{}, archive, fixtures.Catalog(), nil, zap.NewNop())

		res, err := h.HandleArchive(ctx, commands.ArchiveExportCommand{At: at})

		require.NoError(t, err)
		assert.Equal(t, "exports/20250314T092653Z-hazboun-family-data.json", res.Key)
		assert.Equal(t, "mem://"+res.Key, res.Location)
		assert.Equal(t, 5, res.Members)
		assert.Contains(t, string(archive.objects[res.Key]), `"name": "Elias Hazboun"`)
	})

	t.Run("archive failure", func(t *testing.T) {
		archive := &memoryArchive{err: stderrors.New("AccessDenied")}
		h := NewDirectoryHandler(readyDirectory(nil), &stubLoader{}, archive, fixtures.Catalog(), nil, zap.NewNop())

		_, err := h.HandleArchive(ctx, commands.ArchiveExportCommand{At: at})

		assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	})

	t.Run("not configured", func(t *testing.T) {
		h := NewDirectoryHandler(readyDirectory(nil), &stubLoader{}, nil, fixtures.Catalog(), nil, zap.NewNop())

		_, err := h.HandleArchive(ctx, commands.ArchiveExportCommand{})

		assert.True(t, errors.IsType(err, errors.ErrorTypeUnavailable))
	})
}
