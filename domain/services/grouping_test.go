package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByCountry_MergesAliases(t *testing.T) {
	groups := GroupByCountry(sampleDirectory(), normalizer())

	require.Contains(t, groups, "United States")
	assert.NotContains(t, groups, "USA")

	us := groups["United States"]
	assert.Equal(t, 3, us.MemberCount())
	assert.Equal(t, map[string]int{"Chicago": 2, "Detroit": 1}, us.Cities)
	assert.Equal(t, []string{"Chicago", "Detroit"}, us.CityNames())
	assert.Equal(t, []string{"United States"}, us.Countries)
}

func TestGroupByCountry_UnknownAliasKeepsOwnBucket(t *testing.T) {
	dir := sampleDirectory()
	dir[5].Country = "Republica de Chile"

	groups := GroupByCountry(dir, normalizer())

	assert.Contains(t, groups, "Republica de Chile")
	assert.NotContains(t, groups, "Chile")
}

func TestGroupByBranch(t *testing.T) {
	groups := GroupByBranch(sampleDirectory(), normalizer())

	na := groups["North America Branch"]
	require.NotNil(t, na)
	assert.Equal(t, 3, na.MemberCount())
	assert.Equal(t, []string{"United States"}, na.Countries)
	assert.Len(t, groups, 4)
}

func TestSortGroups(t *testing.T) {
	sorted := SortGroups(GroupByCountry(sampleDirectory(), normalizer()))

	require.Len(t, sorted, 4)
	assert.Equal(t, "United States", sorted[0].Key)
	// ties broken by name
	assert.Equal(t, "Chile", sorted[1].Key)
	assert.Equal(t, "Jordan", sorted[2].Key)
	assert.Equal(t, "Palestine", sorted[3].Key)
}

func TestMembersInCountry(t *testing.T) {
	dir := sampleDirectory()
	n := normalizer()

	assert.Equal(t, []string{"3", "4", "5"}, ids(MembersInCountry(dir, n, "USA")))
	assert.Equal(t, []string{"3", "4", "5"}, ids(MembersInCountry(dir, n, "United States of America")))
	assert.Empty(t, MembersInCountry(dir, n, "Brazil"))
}

func TestCountryCounts(t *testing.T) {
	counts := CountryCounts(sampleDirectory(), normalizer())

	assert.Equal(t, 3, counts["United States"])
	assert.Equal(t, 1, counts["Jordan"])
}

func TestDensityLevel(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 3}, {5, 4}, {40, 4}, {-1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DensityLevel(tt.count), "count %d", tt.count)
	}
}

func TestTotalCities(t *testing.T) {
	groups := GroupByCountry(sampleDirectory(), normalizer())

	// Bethlehem, Amman, Chicago, Detroit, Santiago
	assert.Equal(t, 5, TotalCities(groups))
}
