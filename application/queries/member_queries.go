package queries

import (
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
	"hazboun-backend/pkg/errors"
)

// ListMembersQuery lists members matching a search and filters.
type ListMembersQuery struct {
	Search  string
	Country string
	Branch  string
}

func (q ListMembersQuery) Validate() error { return nil }

// MemberList is the directory listing.
type MemberList struct {
	Members   []entities.FamilyMember `json:"members"`
	Total     int                     `json:"total"`
	Branches  []string                `json:"branches"`
	Countries []string                `json:"countries"`
}

// GetMemberQuery fetches one member with its relatives.
type GetMemberQuery struct {
	MemberID string
}

func (q GetMemberQuery) Validate() error {
	if _, err := valueobjects.ParseMemberID(q.MemberID); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

// MemberDetail is a member with resolved parents and children. Parent ids
// that match nobody are listed separately.
type MemberDetail struct {
	Member         entities.FamilyMember   `json:"member"`
	Parents        []entities.FamilyMember `json:"parents"`
	Children       []entities.FamilyMember `json:"children"`
	MissingParents []string                `json:"missingParents,omitempty"`
}

// GetFormOptionsQuery returns the choices of the add-member form. Generation
// selects the candidate parents; zero lists none.
type GetFormOptionsQuery struct {
	Generation int
}

func (q GetFormOptionsQuery) Validate() error { return nil }

// ParentOption is an entry in the parent picker.
type ParentOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Generation int    `json:"generation"`
}

// FormOptions are the add-member form choices.
type FormOptions struct {
	Branches         []string       `json:"branches"`
	Countries        []string       `json:"countries"`
	MinGeneration    int            `json:"minGeneration"`
	MaxGeneration    int            `json:"maxGeneration"`
	CandidateParents []ParentOption `json:"candidateParents"`
}

// ExportDirectoryQuery renders the export file.
type ExportDirectoryQuery struct{}

func (ExportDirectoryQuery) Validate() error { return nil }
func (ExportDirectoryQuery) NoCache() bool   { return true }

// ExportFile is a downloadable directory export.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Members     int
}

// GetDirectoryStatusQuery reports the directory lifecycle state. It works
// whatever the state is.
type GetDirectoryStatusQuery struct{}

func (GetDirectoryStatusQuery) Validate() error { return nil }
func (GetDirectoryStatusQuery) NoCache() bool   { return true }
