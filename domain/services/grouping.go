package services

import (
	"sort"
	"strings"

	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
)

// Group is a set of members sharing a country or a branch, with how many of
// them live in each city.
type Group struct {
	Key       string                  `json:"name"`
	Members   []entities.FamilyMember `json:"members"`
	Cities    map[string]int          `json:"cities"`
	Countries []string                `json:"countries"`
}

// MemberCount returns the size of the group.
func (g *Group) MemberCount() int { return len(g.Members) }

// CityNames lists the group's cities, most populated first.
func (g *Group) CityNames() []string {
	names := make([]string, 0, len(g.Cities))
	for c := range g.Cities {
		names = append(names, c)
	}
	sort.Slice(names, func(i, j int) bool {
		if g.Cities[names[i]] != g.Cities[names[j]] {
			return g.Cities[names[i]] > g.Cities[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func (g *Group) add(m entities.FamilyMember, country string) {
	g.Members = append(g.Members, m)
	if city := strings.TrimSpace(m.Location); city != "" {
		g.Cities[city]++
	}
	for _, c := range g.Countries {
		if c == country {
			return
		}
	}
	g.Countries = append(g.Countries, country)
}

// GroupByCountry partitions members by canonical country name. Aliases in
// the normalizer's table merge into their canonical bucket.
func GroupByCountry(members []entities.FamilyMember, n valueobjects.CountryNormalizer) map[string]*Group {
	groups := map[string]*Group{}
	for _, m := range members {
		country := n.Canonical(m.Country)
		g, ok := groups[country]
		if !ok {
			g = &Group{Key: country, Cities: map[string]int{}}
			groups[country] = g
		}
		g.add(m, country)
	}
	return groups
}

// GroupByBranch partitions members by branch label. Countries are recorded in
// canonical form, in the order they are first seen.
func GroupByBranch(members []entities.FamilyMember, n valueobjects.CountryNormalizer) map[string]*Group {
	groups := map[string]*Group{}
	for _, m := range members {
		branch := strings.TrimSpace(m.Branch)
		g, ok := groups[branch]
		if !ok {
			g = &Group{Key: branch, Cities: map[string]int{}}
			groups[branch] = g
		}
		g.add(m, n.Canonical(m.Country))
	}
	return groups
}

// SortGroups orders groups by size, largest first, then by name.
func SortGroups(groups map[string]*Group) []*Group {
	out := make([]*Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Members) != len(out[j].Members) {
			return len(out[i].Members) > len(out[j].Members)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// MembersInCountry returns members whose canonical country matches country.
func MembersInCountry(members []entities.FamilyMember, n valueobjects.CountryNormalizer, country string) []entities.FamilyMember {
	want := n.Canonical(country)
	var out []entities.FamilyMember
	for _, m := range members {
		if n.Canonical(m.Country) == want {
			out = append(out, m)
		}
	}
	return out
}

// CountryCounts maps canonical country names to member counts, the data the
// map colors by.
func CountryCounts(members []entities.FamilyMember, n valueobjects.CountryNormalizer) map[string]int {
	out := map[string]int{}
	for _, m := range members {
		out[n.Canonical(m.Country)]++
	}
	return out
}

// DensityLevel buckets a member count for map shading: 0, 1, 2, 3-4, 5+.
func DensityLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count == 2:
		return 2
	case count <= 4:
		return 3
	default:
		return 4
	}
}

// TotalCities counts distinct cities across groups; the same city name in two
// countries counts twice.
func TotalCities(groups map[string]*Group) int {
	total := 0
	for _, g := range groups {
		total += len(g.Cities)
	}
	return total
}
