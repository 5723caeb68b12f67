package entities

import (
	"strings"
)

// FamilyMember is a single person in the family directory.
// Field names and JSON tags match the exported file format.
type FamilyMember struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	BirthYear  *int     `json:"birthYear,omitempty"`
	Location   string   `json:"location"`
	Country    string   `json:"country"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Profession string   `json:"profession,omitempty"`
	Branch     string   `json:"branch"`
	Generation int      `json:"generation"`
	Parents    []string `json:"parents,omitempty"`
	Bio        string   `json:"bio,omitempty"`
}

// MemberDraft is a member that has not been stored yet and has no id.
type MemberDraft struct {
	Name       string
	BirthYear  *int
	Location   string
	Country    string
	Email      string
	Phone      string
	Profession string
	Branch     string
	Generation int
	Parents    []string
	Bio        string
}

// MemberPatch carries the fields of a partial update. Nil means unchanged.
type MemberPatch struct {
	Name       *string
	BirthYear  **int
	Location   *string
	Country    *string
	Email      *string
	Phone      *string
	Profession *string
	Branch     *string
	Generation *int
	Parents    *[]string
	Bio        *string
}

// IsEmpty reports whether the patch changes nothing.
func (p MemberPatch) IsEmpty() bool {
	return p.Name == nil && p.BirthYear == nil && p.Location == nil && p.Country == nil &&
		p.Email == nil && p.Phone == nil && p.Profession == nil && p.Branch == nil &&
		p.Generation == nil && p.Parents == nil && p.Bio == nil
}

// WithID turns a draft into a member once the store has assigned an id.
func (d MemberDraft) WithID(id string) FamilyMember {
	m := FamilyMember{
		ID:         id,
		Name:       d.Name,
		BirthYear:  copyInt(d.BirthYear),
		Location:   d.Location,
		Country:    d.Country,
		Email:      d.Email,
		Phone:      d.Phone,
		Profession: d.Profession,
		Branch:     d.Branch,
		Generation: d.Generation,
		Parents:    append([]string(nil), d.Parents...),
		Bio:        d.Bio,
	}
	return m.Normalize()
}

// Apply returns a copy of m with the patch applied.
func (p MemberPatch) Apply(m FamilyMember) FamilyMember {
	out := m.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.BirthYear != nil {
		out.BirthYear = copyInt(*p.BirthYear)
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Country != nil {
		out.Country = *p.Country
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Profession != nil {
		out.Profession = *p.Profession
	}
	if p.Branch != nil {
		out.Branch = *p.Branch
	}
	if p.Generation != nil {
		out.Generation = *p.Generation
	}
	if p.Parents != nil {
		out.Parents = append([]string(nil), (*p.Parents)...)
	}
	if p.Bio != nil {
		out.Bio = *p.Bio
	}
	return out.Normalize()
}

// Normalize trims text fields and collapses an empty parent list to nil, so
// the same member always serializes the same way.
func (m FamilyMember) Normalize() FamilyMember {
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.Location = strings.TrimSpace(m.Location)
	m.Country = strings.TrimSpace(m.Country)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Profession = strings.TrimSpace(m.Profession)
	m.Branch = strings.TrimSpace(m.Branch)
	m.Bio = strings.TrimSpace(m.Bio)

	var parents []string
	for _, id := range m.Parents {
		if id = strings.TrimSpace(id); id != "" {
			parents = append(parents, id)
		}
	}
	m.Parents = parents
	return m
}

// Clone returns a deep copy.
func (m FamilyMember) Clone() FamilyMember {
	m.BirthYear = copyInt(m.BirthYear)
	if m.Parents != nil {
		m.Parents = append([]string(nil), m.Parents...)
	}
	return m
}

// HasParent reports whether id is listed among the member's parents.
func (m FamilyMember) HasParent(id string) bool {
	for _, p := range m.Parents {
		if p == id {
			return true
		}
	}
	return false
}

// CloneAll deep-copies a slice of members.
func CloneAll(members []FamilyMember) []FamilyMember {
	if members == nil {
		return nil
	}
	out := make([]FamilyMember, len(members))
	for i, m := range members {
		out[i] = m.Clone()
	}
	return out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
