package services

import (
	"sort"
	"strings"

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
)

// MemberFilter narrows the directory listing. Empty fields match everything.
type MemberFilter struct {
	Search  string
	Country string
	Branch  string
}

// IsZero reports whether the filter matches every member.
func (f MemberFilter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && strings.TrimSpace(f.Country) == "" && strings.TrimSpace(f.Branch) == ""
}

// FilterMembers applies a case-insensitive search over name, city and
// profession plus exact country and branch filters, keeping directory order.
func FilterMembers(members []entities.FamilyMember, f MemberFilter, n valueobjects.CountryNormalizer) []entities.FamilyMember {
	if f.IsZero() {
		return members
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	branch := strings.TrimSpace(f.Branch)
	country := ""
	if c := strings.TrimSpace(f.Country); c != "" {
		country = n.Canonical(c)
	}

	out := make([]entities.FamilyMember, 0, len(members))
	for _, m := range members {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Location), search) &&
			!strings.Contains(strings.ToLower(m.Profession), search) {
			continue
		}
		if country != "" && n.Canonical(m.Country) != country {
			continue
		}
		if branch != "" && m.Branch != branch {
			continue
		}
		out = append(out, m)
	}
	return out
}

// UniqueBranches lists the distinct branch labels, sorted.
func UniqueBranches(members []entities.FamilyMember) []string {
	set := map[string]bool{}
	for _, m := range members {
		if b := strings.TrimSpace(m.Branch); b != "" {
			set[b] = true
		}
	}
	return sortedKeys(set)
}

// UniqueCountries lists the distinct canonical countries, sorted.
func UniqueCountries(members []entities.FamilyMember, n valueobjects.CountryNormalizer) []string {
	set := map[string]bool{}
	for _, m := range members {
		if c := n.Canonical(m.Country); c != "" {
			set[c] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
