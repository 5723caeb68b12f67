package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/ports"
	"hazboun-backend/application/services"
	"hazboun-backend/application/state"
	"hazboun-backend/domain/events"
	"hazboun-backend/pkg/errors"
)

// Loader runs the directory load sequence.
type Loader interface {
	Load(ctx context.Context) error
}

// DirectoryHandler handles whole-directory commands: import, reload and
// archive.
type DirectoryHandler struct {
	directory *state.Directory
	loader    Loader
	archive   ports.ExportArchive
	catalog   ports.CatalogProvider
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewDirectoryHandler creates a new directory command handler
func NewDirectoryHandler(
	directory *state.Directory,
	loader Loader,
	archive ports.ExportArchive,
	catalog ports.CatalogProvider,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DirectoryHandler {
	return &DirectoryHandler{
		directory: directory,
		loader:    loader,
		archive:   archive,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleImport replaces the directory with the uploaded records. A file that
// is not a JSON array leaves the directory untouched.
func (h *DirectoryHandler) HandleImport(ctx context.Context, cmd commands.ImportDirectoryCommand) (commands.ImportResult, error) {
	members, err := services.DecodeDirectory(cmd.Data)
	if err != nil {
		h.logger.Warn("Rejected directory import", zap.Int("bytes", len(cmd.Data)), zap.Error(err))
		return commands.ImportResult{}, err
	}

	if !h.directory.Replace(members) {
		return commands.ImportResult{}, errors.NewUnavailableError("The family directory has been closed")
	}

	h.logger.Info("Directory imported", zap.Int("members", len(members)))
	publishEvent(ctx, h.publisher, h.logger, events.NewDirectoryImported(len(members), h.now()))
	return commands.ImportResult{Imported: len(members), Message: errors.MessageImportSuccess}, nil
}

// HandleReload re-runs the load sequence and reports the resulting state.
func (h *DirectoryHandler) HandleReload(ctx context.Context, _ commands.ReloadDirectoryCommand) (state.Info, error) {
	if err := h.loader.Load(ctx); err != nil {
		return state.Info{}, err
	}
	return h.directory.Info(), nil
}

// HandleArchive stores the current export file in the archive.
func (h *DirectoryHandler) HandleArchive(ctx context.Context, cmd commands.ArchiveExportCommand) (commands.ArchiveResult, error) {
	if h.archive == nil {
		return commands.ArchiveResult{}, errors.NewUnavailableError("export archiving is not configured")
	}
	if err := h.directory.Ready(); err != nil {
		return commands.ArchiveResult{}, err
	}

	members := h.directory.Snapshot()
	body, err := services.EncodeDirectory(members)
	if err != nil {
		return commands.ArchiveResult{}, errors.NewInternalError("failed to encode directory").WithCause(err)
	}

	at := cmd.At
	if at.IsZero() {
		at = h.now()
	}
	key := ArchiveKey(at, h.catalog.Current().ExportFileName)

	location, err := h.archive.Put(ctx, key, body)
	if err != nil {
		h.logger.Error("Failed to archive export", zap.String("key", key), zap.Error(err))
		return commands.ArchiveResult{}, errors.NewExternalError("export archive", err)
	}

	h.logger.Info("Export archived", zap.String("location", location), zap.Int("members", len(members)))
	return commands.ArchiveResult{Key: key, Location: location, Members: len(members), Bytes: len(body)}, nil
}

// ArchiveKey names an archived export.
func ArchiveKey(at time.Time, fileName string) string {
	return fmt.Sprintf("exports/%s-%s", at.UTC().Format("20060102T150405Z"), fileName)
}
