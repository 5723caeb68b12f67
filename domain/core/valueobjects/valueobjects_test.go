package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryNormalizer(t *testing.T) {
	n := NewCountryNormalizer(map[string]string{
		"USA":                      "United States",
		"United States of America": "United States",
		"UK":                       "United Kingdom",
		"  ":                       "ignored",
	})

	tests := []struct {
		in   string
		want string
	}{
		{"USA", "United States"},
		{" usa ", "United States"},
		{"United States of America", "United States"},
		{"United States", "United States"},
		{"UK", "United Kingdom"},
		{"U.S.A.", "U.S.A."},
		{"  Jordan ", "Jordan"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Canonical(tt.in))
		})
	}

	assert.True(t, n.Same("USA", "United States of America"))
	assert.False(t, n.Same("USA", "Canada"))
	assert.True(t, n.IsKnownAlias("uk"))
	assert.False(t, n.IsKnownAlias("Jordan"))
}

func TestGenerationRange_Parse(t *testing.T) {
	r := GenerationRange{Min: 1, Max: 10}

	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "lower bound", raw: "1", want: 1},
		{name: "upper bound", raw: "10", want: 10},
		{name: "padded", raw: " 4 ", want: 4},
		{name: "zero", raw: "0", wantErr: true},
		{name: "eleven", raw: "11", wantErr: true},
		{name: "not a number", raw: "third", wantErr: true},
		{name: "fraction", raw: "2.5", wantErr: true},
		{name: "blank", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Parse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "1-10", r.String())
}

func TestMemberID(t *testing.T) {
	id := NewMemberID()
	assert.True(t, id.IsUUID())
	assert.False(t, id.IsZero())

	parsed, err := ParseMemberID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, "42", parsed.String())
	assert.False(t, parsed.IsUUID())
	assert.True(t, parsed.Equals(MemberID{value: "42"}))

	_, err = ParseMemberID("   ")
	assert.Error(t, err)
}
