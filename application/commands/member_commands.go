package commands

import (
	"hazboun-backend/domain/core/validators"
	"hazboun-backend/domain/core/valueobjects"
	"hazboun-backend/pkg/errors"
)

// AddMemberCommand submits the add-member form.
type AddMemberCommand struct {
	Input validators.MemberInput
}

// Validate checks the required fields. Range and format checks need the
// catalog and run in the handler.
func (c AddMemberCommand) Validate() error {
	return validators.RequireFields(c.Input)
}

// UpdateMemberCommand changes some fields of an existing member.
type UpdateMemberCommand struct {
	MemberID string
	Input    validators.MemberPatchInput
}

// Validate checks the member id.
func (c UpdateMemberCommand) Validate() error {
	return validateMemberID(c.MemberID)
}

// DeleteMemberCommand removes a member.
type DeleteMemberCommand struct {
	MemberID string
}

// Validate checks the member id.
func (c DeleteMemberCommand) Validate() error {
	return validateMemberID(c.MemberID)
}

func validateMemberID(id string) error {
	if _, err := valueobjects.ParseMemberID(id); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}
