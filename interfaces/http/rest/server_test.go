package rest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazboun-backend/application/services"
	"hazboun-backend/application/state"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/di"
	"hazboun-backend/tests/fixtures"
)

func TestServe_LoadsThenShutsDown(t *testing.T) {
	dir := t.TempDir()
	seed, err := services.EncodeDirectory(fixtures.Family())
	require.NoError(t, err)
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, seed, 0o600))

	container, cleanup, err := di.InitializeContainer(context.Background(), &config.Config{
		ServerPort:   "0",
		Environment:  "test",
		StoreDriver:  config.DriverMemory,
		SeedFile:     seedPath,
		MembersTable: "family_members",
		LogLevel:     "error",
	})
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, container) }()

	require.Eventually(t, func() bool {
		status, _ := container.Directory.Status()
		return status == state.StatusReady
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, container.Directory.Closed())
}
