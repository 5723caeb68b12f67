package services

import (
	"strconv"
	"strings"

	"hazboun-backend/domain/config"
	"hazboun-backend/domain/core/entities"
	"hazboun-backend/domain/core/valueobjects"
)

// Overview holds the headline numbers of the directory.
type Overview struct {
	TotalMembers   int `json:"totalMembers"`
	TotalCountries int `json:"totalCountries"`
	TotalCities    int `json:"totalCities"`
	TotalBranches  int `json:"totalBranches"`
	MaxGeneration  int `json:"generations"`
}

// Summarize computes the overview. An empty directory yields all zeros.
func Summarize(members []entities.FamilyMember, n valueobjects.CountryNormalizer) Overview {
	countries := GroupByCountry(members, n)
	o := Overview{
		TotalMembers:   len(members),
		TotalCountries: len(countries),
		TotalCities:    TotalCities(countries),
		TotalBranches:  len(UniqueBranches(members)),
	}
	for _, m := range members {
		if m.Generation > o.MaxGeneration {
			o.MaxGeneration = m.Generation
		}
	}
	return o
}

// BranchHistory is a branch's narrative alongside the members behind it.
type BranchHistory struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Countries []string                `json:"countries"`
	Members   []entities.FamilyMember `json:"members"`
	config.BranchNarrative
}

// BranchHistories builds one history per distinct branch, in the order the
// branches first appear in the directory.
func BranchHistories(members []entities.FamilyMember, n valueobjects.CountryNormalizer, cfg *config.DomainConfig) []BranchHistory {
	groups := GroupByBranch(members, n)

	var order []string
	seen := map[string]bool{}
	for _, m := range members {
		b := strings.TrimSpace(m.Branch)
		if !seen[b] {
			seen[b] = true
			order = append(order, b)
		}
	}

	out := make([]BranchHistory, 0, len(order))
	for i, name := range order {
		g := groups[name]
		out = append(out, BranchHistory{
			ID:              branchID(i),
			Name:            name,
			Countries:       g.Countries,
			Members:         g.Members,
			BranchNarrative: cfg.NarrativeFor(name, g.Countries),
		})
	}
	return out
}

func branchID(i int) string {
	return "branch-" + strconv.Itoa(i)
}
