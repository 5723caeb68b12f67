package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/ports"
	"hazboun-backend/application/state"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/validators"
	"hazboun-backend/domain/events"
	"hazboun-backend/pkg/errors"
)

// MemberHandler handles add, update and delete. Each one validates locally,
// makes one store call and only touches the directory once the store has
// accepted the change.
type MemberHandler struct {
	store     ports.MemberStore
	directory *state.Directory
	catalog   ports.CatalogProvider
	publisher ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewMemberHandler creates a new member command handler
func NewMemberHandler(
	store ports.MemberStore,
	directory *state.Directory,
	catalog ports.CatalogProvider,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *MemberHandler {
	return &MemberHandler{
		store:     store,
		directory: directory,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleAdd validates the form, inserts the member and appends the stored
// record, with the id the store assigned, to the directory.
func (h *MemberHandler) HandleAdd(ctx context.Context, cmd commands.AddMemberCommand) (entities.FamilyMember, error) {
	if err := h.requireReady(); err != nil {
		return entities.FamilyMember{}, err
	}

	draft, err := validators.NewMemberValidator(h.catalog.Current()).ValidateDraft(cmd.Input)
	if err != nil {
		return entities.FamilyMember{}, err
	}

	stored, err := h.store.Insert(ctx, draft)
	if err != nil {
		h.logger.Error("Failed to add family member", zap.String("name", draft.Name), zap.Error(err))
		return entities.FamilyMember{}, errors.NewMutationError("add", err)
	}

	h.directory.Append(stored)
	h.logger.Info("Family member added",
		zap.String("member_id", stored.ID),
		zap.Int("generation", stored.Generation),
	)
	h.publish(ctx, events.NewMemberAdded(stored, h.now()))
	return stored, nil
}

// HandleUpdate applies the provided fields to an existing member.
func (h *MemberHandler) HandleUpdate(ctx context.Context, cmd commands.UpdateMemberCommand) (entities.FamilyMember, error) {
	if err := h.requireReady(); err != nil {
		return entities.FamilyMember{}, err
	}

	before, ok := h.directory.Get(cmd.MemberID)
	if !ok {
		return entities.FamilyMember{}, errors.NewNotFoundError("family member")
	}

	patch, err := validators.NewMemberValidator(h.catalog.Current()).ValidatePatch(cmd.MemberID, cmd.Input)
	if err != nil {
		return entities.FamilyMember{}, err
	}

	after, err := h.store.Update(ctx, cmd.MemberID, patch)
	if err != nil {
		h.logger.Error("Failed to update family member", zap.String("member_id", cmd.MemberID), zap.Error(err))
		return entities.FamilyMember{}, errors.NewMutationError("update", err)
	}

	h.directory.Patch(after)
	h.publish(ctx, events.NewMemberUpdated(before, after, h.now()))
	return after, nil
}

// HandleDelete removes a member from the store and then from the directory.
// Members listing it as a parent keep the now dangling id.
func (h *MemberHandler) HandleDelete(ctx context.Context, cmd commands.DeleteMemberCommand) error {
	if err := h.requireReady(); err != nil {
		return err
	}

	existing, ok := h.directory.Get(cmd.MemberID)
	if !ok {
		return errors.NewNotFoundError("family member")
	}

	if err := h.store.Remove(ctx, cmd.MemberID); err != nil {
		h.logger.Error("Failed to delete family member", zap.String("member_id", cmd.MemberID), zap.Error(err))
		return errors.NewMutationError("delete", err)
	}

	h.directory.Remove(cmd.MemberID)
	h.publish(ctx, events.NewMemberDeleted(existing.ID, existing.Name, h.now()))
	return nil
}

func (h *MemberHandler) requireReady() error {
	if err := h.directory.Ready(); err != nil {
		if errors.IsType(err, errors.ErrorTypeUnavailable) {
			return err
		}
		return errors.NewUnavailableError("The family directory is not loaded").WithCause(err)
	}
	return nil
}

func (h *MemberHandler) publish(ctx context.Context, event events.DomainEvent) {
	publishEvent(ctx, h.publisher, h.logger, event)
}

func publishEvent(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, event events.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}
