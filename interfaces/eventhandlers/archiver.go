// Package eventhandlers reacts to directory events delivered by EventBridge.
package eventhandlers

import (
	"context"
	"fmt"

	awsevents "github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/commands/bus"
	"hazboun-backend/domain/events"
)

// CommandDispatcher sends commands. *bus.CommandBus satisfies it.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd bus.Command) (interface{}, error)
}

// ArchiveOutcome reports what one event caused.
type ArchiveOutcome struct {
	EventID  string `json:"event_id"`
	Skipped  bool   `json:"skipped"`
	Key      string `json:"key,omitempty"`
	Location string `json:"location,omitempty"`
	Members  int    `json:"members"`
}

// Archiver stores a fresh export each time a member is added, edited or
// removed. Loads and imports are ignored: a load changes nothing in the
// store and an import only lives in the memory of the process that took it.
type Archiver struct {
	commands CommandDispatcher
	logger   *zap.Logger
}

// NewArchiver creates an archiver
func NewArchiver(cmds CommandDispatcher, logger *zap.Logger) *Archiver {
	return &Archiver{commands: cmds, logger: logger}
}

var archivedTypes = map[string]bool{
	events.TypeMemberAdded:   true,
	events.TypeMemberUpdated: true,
	events.TypeMemberDeleted: true,
}

// Handle processes one EventBridge delivery.
func (a *Archiver) Handle(ctx context.Context, evt awsevents.CloudWatchEvent) (ArchiveOutcome, error) {
	outcome := ArchiveOutcome{EventID: evt.ID}
	if evt.Source != events.SourceDirectory || !archivedTypes[evt.DetailType] {
		a.logger.Debug("Ignoring event",
			zap.String("source", evt.Source),
			zap.String("detail_type", evt.DetailType),
		)
		outcome.Skipped = true
		return outcome, nil
	}

	// The export must reflect the store, not whatever this process held.
	if _, err := a.commands.Dispatch(ctx, commands.ReloadDirectoryCommand{}); err != nil {
		return outcome, fmt.Errorf("reload before archive: %w", err)
	}

	result, err := a.commands.Dispatch(ctx, commands.ArchiveExportCommand{At: evt.Time})
	if err != nil {
		return outcome, fmt.Errorf("archive export: %w", err)
	}
	archived, ok := result.(commands.ArchiveResult)
	if !ok {
		return outcome, fmt.Errorf("unexpected archive result %T", result)
	}

	a.logger.Info("Archived directory after change",
		zap.String("event_id", evt.ID),
		zap.String("detail_type", evt.DetailType),
		zap.String("key", archived.Key),
		zap.Int("members", archived.Members),
	)
	outcome.Key = archived.Key
	outcome.Location = archived.Location
	outcome.Members = archived.Members
	return outcome, nil
}
