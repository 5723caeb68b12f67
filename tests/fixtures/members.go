// Package fixtures builds family members for tests.
package fixtures

import (
	"fmt"

	"hazboun-backend/domain/core/entities"
)

// MemberBuilder builds a FamilyMember with sensible defaults.
type MemberBuilder struct {
	member entities.FamilyMember
}

// NewMember starts a builder for a first-generation member in Bethlehem.
func NewMember(id string) *MemberBuilder {
	return &MemberBuilder{member: entities.FamilyMember{
		ID:         id,
		Name:       fmt.Sprintf("Hazboun %s", id),
		Location:   "Bethlehem",
		Country:    "Palestine",
		Branch:     "Palestine Branch",
		Generation: 1,
	}}
}

func (b *MemberBuilder) Named(name string) *MemberBuilder {
	b.member.Name = name
	return b
}

func (b *MemberBuilder) In(city, country string) *MemberBuilder {
	b.member.Location = city
	b.member.Country = country
	return b
}

func (b *MemberBuilder) Branch(branch string) *MemberBuilder {
	b.member.Branch = branch
	return b
}

func (b *MemberBuilder) Generation(g int) *MemberBuilder {
	b.member.Generation = g
	return b
}

func (b *MemberBuilder) BornIn(year int) *MemberBuilder {
	b.member.BirthYear = &year
	return b
}

func (b *MemberBuilder) Profession(p string) *MemberBuilder {
	b.member.Profession = p
	return b
}

func (b *MemberBuilder) Email(e string) *MemberBuilder {
	b.member.Email = e
	return b
}

func (b *MemberBuilder) ChildOf(ids ...string) *MemberBuilder {
	b.member.Parents = append(b.member.Parents, ids...)
	return b
}

// Build returns the member.
func (b *MemberBuilder) Build() entities.FamilyMember {
	return b.member.Clone()
}

// Family returns a small three-generation directory spread over four
// countries. The USA spelling is intentional.
func Family() []entities.FamilyMember {
	return []entities.FamilyMember{
		NewMember("1").Named("Elias Hazboun").BornIn(1920).Profession("Stonemason").Build(),
		NewMember("2").Named("Maryam Hazboun").In("Amman", "Jordan").Branch("Jordan Branch").Generation(2).ChildOf("1").Profession("Teacher").Build(),
		NewMember("3").Named("George Hazboun").In("Chicago", "USA").Branch("North America Branch").Generation(2).ChildOf("1").Profession("Engineer").Build(),
		NewMember("4").Named("Nadia Hazboun").In("Detroit", "United States").Branch("North America Branch").Generation(3).ChildOf("3").Build(),
		NewMember("5").Named("Rania Hazboun").In("Santiago", "Chile").Branch("South America Branch").Generation(3).Build(),
	}
}

// Member is a shorthand for entities.FamilyMember in test tables.
type Member = entities.FamilyMember
