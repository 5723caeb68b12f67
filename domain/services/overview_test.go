package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazboun-backend/domain/config"
)

func TestSummarize(t *testing.T) {
	o := Summarize(sampleDirectory(), normalizer())

	assert.Equal(t, Overview{
		TotalMembers:   6,
		TotalCountries: 4,
		TotalCities:    5,
		TotalBranches:  4,
		MaxGeneration:  5,
	}, o)

	assert.Equal(t, Overview{}, Summarize(nil, normalizer()))
}

func TestBranchHistories(t *testing.T) {
	cfg := config.DefaultDomainConfig()

	histories := BranchHistories(sampleDirectory(), normalizer(), cfg)

	require.Len(t, histories, 4)
	assert.Equal(t, "branch-0", histories[0].ID)
	assert.Equal(t, "Palestine Branch", histories[0].Name)
	assert.Equal(t, "North America Branch", histories[2].Name)
	assert.Equal(t, []string{"United States"}, histories[2].Countries)
	assert.Len(t, histories[2].Members, 3)
	assert.Equal(t, cfg.Narratives["Jordan Branch"].Story, histories[1].Story)
}

func TestBranchHistories_DefaultNarrative(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	dir := sampleDirectory()
	dir[5].Branch = "Andean Branch"

	histories := BranchHistories(dir, normalizer(), cfg)

	last := histories[len(histories)-1]
	assert.Equal(t, "Andean Branch", last.Name)
	assert.Equal(t, "Chile", last.Destination)
	assert.Contains(t, last.Story, "Andean Branch")
}
