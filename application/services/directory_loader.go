package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hazboun-backend/application/ports"
	"hazboun-backend/application/state"
	"hazboun-backend/domain/events"
	"hazboun-backend/pkg/errors"
)

// DirectoryLoader runs the load sequence: probe the store, fetch every
// member, install the result. Each call makes exactly one probe and at most
// one fetch; there is no automatic retry.
type DirectoryLoader struct {
	store     ports.MemberStore
	directory *state.Directory
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDirectoryLoader creates a loader.
func NewDirectoryLoader(store ports.MemberStore, directory *state.Directory, publisher ports.EventPublisher, logger *zap.Logger) *DirectoryLoader {
	return &DirectoryLoader{
		store:     store,
		directory: directory,
		publisher: publisher,
		logger:    logger,
	}
}

// Load runs the sequence once. It returns a connectivity error when the probe
// fails and a fetch error when the fetch fails. A result overtaken by a newer
// load, an import or Close is dropped and Load returns nil.
func (l *DirectoryLoader) Load(ctx context.Context) error {
	ticket := l.directory.BeginLoad()
	start := time.Now()

	if err := l.store.Ping(ctx); err != nil {
		loadErr := errors.NewConnectivityError(err)
		l.logger.Error("Directory store unreachable", zap.Error(err))
		return l.fail(ticket, loadErr)
	}

	members, err := l.store.FetchAll(ctx)
	if err != nil {
		loadErr := errors.NewFetchError(err)
		l.logger.Error("Failed to fetch family members", zap.Error(err))
		return l.fail(ticket, loadErr)
	}

	if !l.directory.CompleteLoad(ticket, members) {
		l.logger.Info("Dropping superseded directory load", zap.Uint64("ticket", uint64(ticket)))
		return nil
	}

	l.logger.Info("Directory loaded",
		zap.Int("members", len(members)),
		zap.Duration("duration", time.Since(start)),
	)
	l.publish(ctx, events.NewDirectoryLoaded(len(members), time.Now()))
	return nil
}

func (l *DirectoryLoader) fail(ticket state.LoadTicket, err error) error {
	if !l.directory.FailLoad(ticket, err) {
		l.logger.Info("Dropping superseded directory load failure", zap.Uint64("ticket", uint64(ticket)))
		return nil
	}
	return err
}

func (l *DirectoryLoader) publish(ctx context.Context, event events.DomainEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
