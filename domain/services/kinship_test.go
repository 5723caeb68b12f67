package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazboun-backend/domain/core/entities"
)

func ids(members []entities.FamilyMember) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}

func TestGroupByGeneration(t *testing.T) {
	dir := sampleDirectory()

	groups := GroupByGeneration(dir)

	assert.Equal(t, []int{1, 2, 3, 5}, SortedGenerations(groups))
	assert.Equal(t, []string{"2", "3"}, ids(groups[2]))

	// every record lands in exactly one group
	total := 0
	seen := map[string]int{}
	for _, members := range groups {
		total += len(members)
		for _, m := range members {
			seen[m.ID]++
		}
	}
	assert.Equal(t, len(dir), total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "member %s", id)
	}
}

func TestGroupByGeneration_Empty(t *testing.T) {
	groups := GroupByGeneration(nil)

	assert.Empty(t, groups)
	assert.Empty(t, groups.Bands())
}

func TestBands(t *testing.T) {
	bands := GroupByGeneration(sampleDirectory()).Bands()

	require.Len(t, bands, 4)
	assert.Equal(t, 1, bands[0].Generation)
	assert.Equal(t, 5, bands[3].Generation)
	assert.Equal(t, []string{"6"}, ids(bands[3].Members))
}

func TestChildrenOf(t *testing.T) {
	dir := sampleDirectory()

	assert.Equal(t, []string{"2", "3"}, ids(ChildrenOf(dir, "1")))
	assert.Equal(t, []string{"4", "5"}, ids(ChildrenOf(dir, "3")))
	assert.Empty(t, ChildrenOf(dir, "6"))
	assert.Empty(t, ChildrenOf(dir, ""))
}

func TestParentsOf(t *testing.T) {
	dir := sampleDirectory()
	nadia, ok := FindMember(dir, "4")
	require.True(t, ok)

	parents := ParentsOf(dir, nadia)

	assert.Equal(t, []string{"3"}, ids(parents))
	assert.Equal(t, []string{"missing"}, DanglingParents(dir, nadia))
	assert.Empty(t, ParentsOf(dir, dir[0]))
}

func TestFindMember_Unknown(t *testing.T) {
	_, ok := FindMember(sampleDirectory(), "nope")

	assert.False(t, ok)
}

func TestCandidateParents(t *testing.T) {
	dir := sampleDirectory()

	assert.Equal(t, []string{"1", "2", "3"}, ids(CandidateParents(dir, 3)))
	assert.Empty(t, CandidateParents(dir, 1))
}
