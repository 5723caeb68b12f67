package queries

import (
	"strings"

	"hazboun-backend/domain/config"
	"hazboun-backend/domain/core/entities"
	domainservices "hazboun-backend/domain/services"
	"hazboun-backend/pkg/errors"
)

// GetFamilyTreeQuery builds the generation bands. Expanded overrides the
// catalog's default set of open generations when non-nil.
type GetFamilyTreeQuery struct {
	Expanded []int
}

func (q GetFamilyTreeQuery) Validate() error { return nil }

// TreeBand is one generation row.
type TreeBand struct {
	Generation int                     `json:"generation"`
	Expanded   bool                    `json:"expanded"`
	Count      int                     `json:"count"`
	Members    []entities.FamilyMember `json:"members"`
}

// FamilyTree is the tree view.
type FamilyTree struct {
	Bands []TreeBand `json:"generations"`
	Total int        `json:"total"`
}

// GetCountryStatsQuery lists countries, optionally narrowed by a
// case-insensitive search on the country name.
type GetCountryStatsQuery struct {
	Search string
}

func (q GetCountryStatsQuery) Validate() error { return nil }

// CityCount is the number of members in one city.
type CityCount struct {
	City    string `json:"city"`
	Members int    `json:"members"`
}

// CountryStat summarizes one country.
type CountryStat struct {
	Country string      `json:"country"`
	Members int         `json:"totalMembers"`
	Cities  []CityCount `json:"cities"`
	Level   int         `json:"densityLevel"`
	Color   string      `json:"color"`
}

// CountryStats is the places view.
type CountryStats struct {
	Countries      []CountryStat `json:"countries"`
	TotalCountries int           `json:"totalCountries"`
	TotalCities    int           `json:"totalCities"`
}

// GetCountryMembersQuery lists the members living in a country.
type GetCountryMembersQuery struct {
	Country string
}

func (q GetCountryMembersQuery) Validate() error {
	if strings.TrimSpace(q.Country) == "" {
		return errors.NewValidationError("country is required")
	}
	return nil
}

// CountryMembers are the members of one canonical country.
type CountryMembers struct {
	Country string                  `json:"country"`
	Members []entities.FamilyMember `json:"members"`
}

// GetBranchStatsQuery summarizes each branch.
type GetBranchStatsQuery struct{}

func (GetBranchStatsQuery) Validate() error { return nil }

// BranchStat summarizes one branch.
type BranchStat struct {
	Branch    string      `json:"branch"`
	Members   int         `json:"totalMembers"`
	Countries []string    `json:"countries"`
	Cities    []CityCount `json:"cities"`
}

// GetFamilyHistoryQuery returns branch narratives and the family timeline.
type GetFamilyHistoryQuery struct{}

func (GetFamilyHistoryQuery) Validate() error { return nil }

// FamilyHistory is the history view.
type FamilyHistory struct {
	Branches []domainservices.BranchHistory `json:"branches"`
	Timeline []config.TimelineEvent         `json:"timeline"`
}

// GetOverviewQuery returns the headline numbers.
type GetOverviewQuery struct{}

func (GetOverviewQuery) Validate() error { return nil }

// ResolveCountryQuery maps a name from the world map to a canonical country.
type ResolveCountryQuery struct {
	Name string
}

func (q ResolveCountryQuery) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return errors.NewValidationError("name is required")
	}
	return nil
}

// CountryResolution is the result of resolving a map name.
type CountryResolution struct {
	Input   string `json:"input"`
	Country string `json:"country"`
	Alias   bool   `json:"alias"`
	Members int    `json:"members"`
	Level   int    `json:"densityLevel"`
	Color   string `json:"color"`
}
