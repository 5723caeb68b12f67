package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DomainConfig holds the configurable rules and content of the directory.
type DomainConfig struct {
	// Entry rules for the add/update path. Derived views never apply them.
	MinGeneration     int `yaml:"minGeneration"`
	MaxGeneration     int `yaml:"maxGeneration"`
	EarliestBirthYear int `yaml:"earliestBirthYear"`

	// Tree view
	ExpandedGenerations []int `yaml:"expandedGenerations"`

	// Country name canonicalization shared by grouping and the map.
	CountryAliases map[string]string `yaml:"countryAliases"`

	// Choices offered by the add-member form. Free text is still accepted.
	Branches  []string `yaml:"branches"`
	Countries []string `yaml:"countries"`

	// History view
	Narratives       map[string]BranchNarrative `yaml:"narratives"`
	DefaultNarrative BranchNarrative            `yaml:"defaultNarrative"`
	Timeline         []TimelineEvent            `yaml:"timeline"`

	// Map density colors indexed by level.
	DensityColors []string `yaml:"densityColors"`

	ExportFileName string `yaml:"exportFileName"`
}

// BranchNarrative is the written history of one branch. MigrationPeriod is
// free text ("N/A", "1948 and 1967", "1950s to Present").
type BranchNarrative struct {
	Origin          string `yaml:"origin" json:"origin"`
	Destination     string `yaml:"destination" json:"destination"`
	MigrationPeriod string `yaml:"migrationPeriod" json:"migrationYear"`
	Story           string `yaml:"story" json:"story"`
	HistoricalNotes string `yaml:"historicalNotes" json:"historicalNotes"`
}

// TimelineEvent is one entry of the family timeline.
type TimelineEvent struct {
	Period string `yaml:"period" json:"year"`
	Event  string `yaml:"event" json:"event"`
}

// DefaultDomainConfig returns the built-in catalog.
func DefaultDomainConfig() *DomainConfig {
	cfg := &DomainConfig{}
	if err := yaml.Unmarshal(defaultCatalog, cfg); err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return cfg
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()
	cfg.ExpandedGenerations = nil
	for g := cfg.MinGeneration; g <= cfg.MaxGeneration; g++ {
		cfg.ExpandedGenerations = append(cfg.ExpandedGenerations, g)
	}
	return cfg
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Overlay decodes YAML on top of a copy of base. Keys missing from data keep
// the base value; maps are merged key by key.
func Overlay(base *DomainConfig, data []byte) (*DomainConfig, error) {
	out := base.Clone()
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinGeneration < 1 {
		return fmt.Errorf("minGeneration must be at least 1, got %d", c.MinGeneration)
	}
	if c.MaxGeneration < c.MinGeneration {
		return fmt.Errorf("maxGeneration %d is below minGeneration %d", c.MaxGeneration, c.MinGeneration)
	}
	if len(c.DensityColors) == 0 {
		return fmt.Errorf("densityColors must not be empty")
	}
	if strings.TrimSpace(c.ExportFileName) == "" {
		return fmt.Errorf("exportFileName must not be empty")
	}
	return nil
}

// Clone returns a deep copy.
func (c *DomainConfig) Clone() *DomainConfig {
	out := *c
	out.ExpandedGenerations = append([]int(nil), c.ExpandedGenerations...)
	out.Branches = append([]string(nil), c.Branches...)
	out.Countries = append([]string(nil), c.Countries...)
	out.Timeline = append([]TimelineEvent(nil), c.Timeline...)
	out.DensityColors = append([]string(nil), c.DensityColors...)
	out.CountryAliases = make(map[string]string, len(c.CountryAliases))
	for k, v := range c.CountryAliases {
		out.CountryAliases[k] = v
	}
	out.Narratives = make(map[string]BranchNarrative, len(c.Narratives))
	for k, v := range c.Narratives {
		out.Narratives[k] = v
	}
	return &out
}

// NarrativeFor returns the narrative of a branch. Branches without their own
// entry get the default narrative filled in with their countries.
func (c *DomainConfig) NarrativeFor(branch string, countries []string) BranchNarrative {
	if n, ok := c.Narratives[branch]; ok {
		return n
	}
	r := strings.NewReplacer(
		"{branch}", branch,
		"{countries}", strings.Join(countries, ", "),
		"{countriesAnd}", strings.Join(countries, " and "),
	)
	d := c.DefaultNarrative
	return BranchNarrative{
		Origin:          r.Replace(d.Origin),
		Destination:     r.Replace(d.Destination),
		MigrationPeriod: r.Replace(d.MigrationPeriod),
		Story:           r.Replace(d.Story),
		HistoricalNotes: r.Replace(d.HistoricalNotes),
	}
}

// DensityColor maps a density level to its color, clamping to the palette.
func (c *DomainConfig) DensityColor(level int) string {
	if len(c.DensityColors) == 0 {
		return ""
	}
	if level < 0 {
		level = 0
	}
	if level >= len(c.DensityColors) {
		level = len(c.DensityColors) - 1
	}
	return c.DensityColors[level]
}

// SortedCountries returns the form's country choices in alphabetical order.
func (c *DomainConfig) SortedCountries() []string {
	out := append([]string(nil), c.Countries...)
	sort.Strings(out)
	return out
}
