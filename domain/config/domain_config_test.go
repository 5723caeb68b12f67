package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDomainConfig(t *testing.T) {
	cfg := DefaultDomainConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.MinGeneration)
	assert.Equal(t, 10, cfg.MaxGeneration)
	assert.Equal(t, []int{1, 2}, cfg.ExpandedGenerations)
	assert.Equal(t, "United States", cfg.CountryAliases["USA"])
	assert.Equal(t, "Palestine", cfg.CountryAliases["West Bank"])
	assert.Contains(t, cfg.Branches, "Jordan Branch")
	assert.Contains(t, cfg.Countries, "Palestine")
	assert.Len(t, cfg.DensityColors, 5)
	assert.Equal(t, "hazboun-family-data.json", cfg.ExportFileName)
	assert.NotEmpty(t, cfg.Timeline)
	assert.Equal(t, "1610", cfg.Timeline[0].Period)
}

func TestNarrativeFor(t *testing.T) {
	cfg := DefaultDomainConfig()

	t.Run("known branch", func(t *testing.T) {
		n := cfg.NarrativeFor("Jordan Branch", []string{"Jordan"})

		assert.Equal(t, "1948 and 1967", n.MigrationPeriod)
		assert.Equal(t, "Bethlehem, Palestine", n.Origin)
	})

	t.Run("default template", func(t *testing.T) {
		n := cfg.NarrativeFor("Canadian Branch", []string{"Canada", "United States"})

		assert.Equal(t, "Canada, United States", n.Destination)
		assert.Equal(t, "1948", n.MigrationPeriod)
		assert.Contains(t, n.Story, "The Canadian Branch established roots in Canada and United States")
	})
}

func TestOverlay(t *testing.T) {
	base := DefaultDomainConfig()

	t.Run("overrides bounds and merges aliases", func(t *testing.T) {
		out, err := Overlay(base, []byte("maxGeneration: 12\ncountryAliases:\n  KSA: Saudi Arabia\n"))

		require.NoError(t, err)
		assert.Equal(t, 12, out.MaxGeneration)
		assert.Equal(t, "Saudi Arabia", out.CountryAliases["KSA"])
		assert.Equal(t, "United States", out.CountryAliases["USA"])
		assert.Equal(t, 10, base.MaxGeneration)
		_, leaked := base.CountryAliases["KSA"]
		assert.False(t, leaked)
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		_, err := Overlay(base, []byte("minGeneration: 5\nmaxGeneration: 2\n"))

		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		_, err := Overlay(base, []byte("maxGeneration: [oops"))

		assert.Error(t, err)
	})
}

func TestDensityColor(t *testing.T) {
	cfg := DefaultDomainConfig()

	assert.Equal(t, "#f1f5f9", cfg.DensityColor(0))
	assert.Equal(t, "#1e40af", cfg.DensityColor(4))
	assert.Equal(t, "#1e40af", cfg.DensityColor(99))
	assert.Equal(t, "#f1f5f9", cfg.DensityColor(-1))
}

func TestLoadDomainConfig(t *testing.T) {
	dev := LoadDomainConfig("development")
	assert.Len(t, dev.ExpandedGenerations, 10)

	prod := LoadDomainConfig("production")
	assert.Equal(t, []int{1, 2}, prod.ExpandedGenerations)
}
