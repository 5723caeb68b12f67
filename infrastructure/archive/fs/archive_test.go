package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestArchive_Put(t *testing.T) {
	root := filepath.Join(t.TempDir(), "exports")
	archive, err := New(root, zap.NewNop())
	require.NoError(t, err)

	location, err := archive.Put(context.Background(), "exports/20240301T120000Z-family.json", []byte(`[]`))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "exports", "20240301T120000Z-family.json"), location)
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = archive.Put(context.Background(), "exports/20240301T120000Z-family.json", []byte(`[{}]`))
	require.NoError(t, err)
	data, _ = os.ReadFile(location)
	assert.Equal(t, "[{}]", string(data))
}

func TestArchive_RejectsBadKeys(t *testing.T) {
	archive, err := New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../escape.json", "a/../../b"} {
		_, err := archive.Put(context.Background(), key, nil)
		assert.Error(t, err, key)
	}
}
