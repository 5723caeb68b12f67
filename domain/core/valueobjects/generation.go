package valueobjects

import (
	"fmt"
	"strconv"
	"strings"
)

// GenerationRange bounds the generation values accepted on entry.
type GenerationRange struct {
	Min int
	Max int
}

// Contains reports whether g lies within the range, inclusive.
func (r GenerationRange) Contains(g int) bool {
	return g >= r.Min && g <= r.Max
}

// Parse reads a generation typed into a form. Only whole numbers within the
// range are accepted.
func (r GenerationRange) Parse(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	g, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("generation %q is not a whole number", raw)
	}
	if !r.Contains(g) {
		return 0, fmt.Errorf("generation %d is outside %d-%d", g, r.Min, r.Max)
	}
	return g, nil
}

// String renders the range the way the form describes it.
func (r GenerationRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
