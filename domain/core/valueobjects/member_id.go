package valueobjects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// MemberID is the opaque identity the record store assigns to a member.
// Stores backed by Supabase hand out their own ids; the embedded stores use
// random UUIDs.
type MemberID struct {
	value string
}

// NewMemberID creates a new random MemberID
func NewMemberID() MemberID {
	return MemberID{value: uuid.New().String()}
}

// ParseMemberID wraps an id received from a request or the store.
func ParseMemberID(id string) (MemberID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return MemberID{}, errors.New("member ID cannot be empty")
	}
	return MemberID{value: id}, nil
}

// String returns the string representation of the MemberID
func (id MemberID) String() string {
	return id.value
}

// Equals checks if two MemberIDs are equal
func (id MemberID) Equals(other MemberID) bool {
	return id.value == other.value
}

// IsZero checks if the MemberID is the zero value
func (id MemberID) IsZero() bool {
	return id.value == ""
}

// IsUUID reports whether the id has UUID shape.
func (id MemberID) IsUUID() bool {
	_, err := uuid.Parse(id.value)
	return err == nil
}
