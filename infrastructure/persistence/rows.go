// Package persistence holds what the member stores share: the row layout of
// the family_members table and the conversions to and from domain types.
package persistence

import (
	"encoding/json"
	"strings"

	"hazboun-backend/domain/core/entities"
)

// Column names of the members table.
const (
	ColID         = "id"
	ColName       = "name"
	ColBirthYear  = "birth_year"
	ColLocation   = "location"
	ColCountry    = "country"
	ColEmail      = "email"
	ColPhone      = "phone"
	ColProfession = "profession"
	ColBranch     = "branch"
	ColGeneration = "generation"
	ColParents    = "parents"
	ColBio        = "bio"
)

// Columns lists every column in table order.
var Columns = []string{
	ColID, ColName, ColBirthYear, ColLocation, ColCountry, ColEmail,
	ColPhone, ColProfession, ColBranch, ColGeneration, ColParents, ColBio,
}

// MemberRow is a members table row as PostgREST returns it.
type MemberRow struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	BirthYear  *int     `json:"birth_year"`
	Location   string   `json:"location"`
	Country    string   `json:"country"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Profession *string  `json:"profession"`
	Branch     string   `json:"branch"`
	Generation int      `json:"generation"`
	Parents    []string `json:"parents"`
	Bio        *string  `json:"bio"`
}

// ToMember converts a row to a domain member.
func (r MemberRow) ToMember() entities.FamilyMember {
	return entities.FamilyMember{
		ID:         r.ID,
		Name:       r.Name,
		BirthYear:  r.BirthYear,
		Location:   r.Location,
		Country:    r.Country,
		Email:      deref(r.Email),
		Phone:      deref(r.Phone),
		Profession: deref(r.Profession),
		Branch:     r.Branch,
		Generation: r.Generation,
		Parents:    r.Parents,
		Bio:        deref(r.Bio),
	}.Normalize()
}

// RowFromDraft builds the row to insert for a draft. The id is left to the
// store.
func RowFromDraft(d entities.MemberDraft) MemberRow {
	return MemberRow{
		Name:       d.Name,
		BirthYear:  d.BirthYear,
		Location:   d.Location,
		Country:    d.Country,
		Email:      nullable(d.Email),
		Phone:      nullable(d.Phone),
		Profession: nullable(d.Profession),
		Branch:     d.Branch,
		Generation: d.Generation,
		Parents:    nonNilParents(d.Parents),
		Bio:        nullable(d.Bio),
	}
}

// RowFromMember builds a full row, id included.
func RowFromMember(m entities.FamilyMember) MemberRow {
	row := RowFromDraft(entities.MemberDraft{
		Name: m.Name, BirthYear: m.BirthYear, Location: m.Location, Country: m.Country,
		Email: m.Email, Phone: m.Phone, Profession: m.Profession, Branch: m.Branch,
		Generation: m.Generation, Parents: m.Parents, Bio: m.Bio,
	})
	row.ID = m.ID
	return row
}

// PatchColumns maps a patch to column values. Optional text cleared to ""
// is stored as NULL.
func PatchColumns(p entities.MemberPatch) map[string]interface{} {
	cols := map[string]interface{}{}
	if p.Name != nil {
		cols[ColName] = *p.Name
	}
	if p.BirthYear != nil {
		if *p.BirthYear == nil {
			cols[ColBirthYear] = nil
		} else {
			cols[ColBirthYear] = **p.BirthYear
		}
	}
	if p.Location != nil {
		cols[ColLocation] = *p.Location
	}
	if p.Country != nil {
		cols[ColCountry] = *p.Country
	}
	if p.Email != nil {
		cols[ColEmail] = nullableValue(*p.Email)
	}
	if p.Phone != nil {
		cols[ColPhone] = nullableValue(*p.Phone)
	}
	if p.Profession != nil {
		cols[ColProfession] = nullableValue(*p.Profession)
	}
	if p.Branch != nil {
		cols[ColBranch] = *p.Branch
	}
	if p.Generation != nil {
		cols[ColGeneration] = *p.Generation
	}
	if p.Parents != nil {
		cols[ColParents] = nonNilParents(*p.Parents)
	}
	if p.Bio != nil {
		cols[ColBio] = nullableValue(*p.Bio)
	}
	return cols
}

// EncodeParents renders a parent list for a text column.
func EncodeParents(parents []string) string {
	data, _ := json.Marshal(nonNilParents(parents))
	return string(data)
}

// DecodeParents reads a parent list stored either as JSON text or as a
// Postgres array literal such as {1,2}.
func DecodeParents(raw string) []string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "" || raw == "null" || raw == "{}" || raw == "[]":
		return nil
	case strings.HasPrefix(raw, "["):
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out
		}
		return nil
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		var out []string
		for _, part := range strings.Split(raw[1:len(raw)-1], ",") {
			part = strings.Trim(strings.TrimSpace(part), `"`)
			if part != "" && part != "NULL" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{raw}
	}
}

func nonNilParents(parents []string) []string {
	if parents == nil {
		return []string{}
	}
	return parents
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
