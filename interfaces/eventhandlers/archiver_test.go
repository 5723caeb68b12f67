package eventhandlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"hazboun-backend/application/commands/bus"
	"hazboun-backend/application/services"
	"hazboun-backend/domain/events"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/di"
	"hazboun-backend/tests/fixtures"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newArchiver(t *testing.T) (*Archiver, string) {
	t.Helper()
	dir := t.TempDir()
	seed, err := services.EncodeDirectory(fixtures.Family())
	require.NoError(t, err)
	seedPath := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(seedPath, seed, 0o600))

	exportDir := filepath.Join(dir, "exports")
	container, cleanup, err := di.InitializeContainer(context.Background(), &config.Config{
		Environment:  "test",
		StoreDriver:  config.DriverMemory,
		SeedFile:     seedPath,
		MembersTable: "family_members",
		ExportDir:    exportDir,
		LogLevel:     "error",
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewArchiver(container.CommandBus, container.Logger), exportDir
}

func event(detailType string) awsevents.CloudWatchEvent {
	return awsevents.CloudWatchEvent{
		ID:         "evt-1",
		Source:     events.SourceDirectory,
		DetailType: detailType,
		Time:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestArchiver_ArchivesAfterMemberChanges(t *testing.T) {
	a, exportDir := newArchiver(t)

	outcome, err := a.Handle(context.Background(), event(events.TypeMemberAdded))

	require.NoError(t, err)
	assert.False(t, outcome.Skipped)
	assert.Equal(t, 5, outcome.Members)
	assert.Contains(t, outcome.Key, "20240501T120000Z")
	assert.True(t, strings.HasPrefix(outcome.Location, exportDir))
	_, err = os.Stat(outcome.Location)
	assert.NoError(t, err)
}

func TestArchiver_SkipsOtherEvents(t *testing.T) {
	a, _ := newArchiver(t)

	tests := []awsevents.CloudWatchEvent{
		event(events.TypeDirectoryLoaded),
		event(events.TypeDirectoryImported),
		{ID: "x", Source: "aws.s3", DetailType: events.TypeMemberAdded},
	}
	for _, evt := range tests {
		outcome, err := a.Handle(context.Background(), evt)
		require.NoError(t, err)
		assert.True(t, outcome.Skipped, "%s from %s", evt.DetailType, evt.Source)
	}
}

type failingBus struct{ calls int }

func (f *failingBus) Dispatch(context.Context, bus.Command) (interface{}, error) {
	f.calls++
	return nil, fmt.Errorf("store unreachable")
}

func TestArchiver_ReloadFailureStopsArchive(t *testing.T) {
	fb := &failingBus{}
	a := NewArchiver(fb, zap.NewNop())

	_, err := a.Handle(context.Background(), event(events.TypeMemberDeleted))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reload before archive")
	assert.Equal(t, 1, fb.calls)
}
