package valueobjects

import "strings"

// CountryNormalizer maps alternate country spellings to one canonical name.
// Names missing from the alias table pass through trimmed but otherwise
// unchanged, so an unknown alias stays in its own bucket.
type CountryNormalizer struct {
	aliases map[string]string
	folded  map[string]string
}

// NewCountryNormalizer builds a normalizer from an alias table.
func NewCountryNormalizer(aliases map[string]string) CountryNormalizer {
	n := CountryNormalizer{
		aliases: make(map[string]string, len(aliases)),
		folded:  make(map[string]string, len(aliases)),
	}
	for alias, canonical := range aliases {
		alias = strings.TrimSpace(alias)
		canonical = strings.TrimSpace(canonical)
		if alias == "" || canonical == "" {
			continue
		}
		n.aliases[alias] = canonical
		n.folded[strings.ToLower(alias)] = canonical
	}
	return n
}

// Canonical returns the canonical name for a country.
func (n CountryNormalizer) Canonical(name string) string {
	name = strings.TrimSpace(name)
	if c, ok := n.aliases[name]; ok {
		return c
	}
	if c, ok := n.folded[strings.ToLower(name)]; ok {
		return c
	}
	return name
}

// Same reports whether two names refer to the same canonical country.
func (n CountryNormalizer) Same(a, b string) bool {
	return n.Canonical(a) == n.Canonical(b)
}

// IsKnownAlias reports whether the name appears in the alias table.
func (n CountryNormalizer) IsKnownAlias(name string) bool {
	_, ok := n.folded[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
