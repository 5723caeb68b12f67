package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestFamilyMember_JSONShape(t *testing.T) {
	m := FamilyMember{
		ID:         "7",
		Name:       "Samir Hazboun",
		BirthYear:  intPtr(1943),
		Location:   "Ramallah",
		Country:    "Palestine",
		Branch:     "Palestine Branch",
		Generation: 1,
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, float64(1943), fields["birthYear"])
	assert.NotContains(t, fields, "email")
	assert.NotContains(t, fields, "parents")
	assert.NotContains(t, fields, "bio")
	assert.Contains(t, fields, "generation")
}

func TestFamilyMember_Normalize(t *testing.T) {
	m := FamilyMember{
		Name:    "  Layla  ",
		Country: " United States ",
		Parents: []string{" 1 ", "", "  "},
	}

	n := m.Normalize()

	assert.Equal(t, "Layla", n.Name)
	assert.Equal(t, "United States", n.Country)
	assert.Equal(t, []string{"1"}, n.Parents)

	empty := FamilyMember{Parents: []string{}}.Normalize()
	assert.Nil(t, empty.Parents)
}

func TestMemberDraft_WithID(t *testing.T) {
	year := 1990
	d := MemberDraft{Name: "Dina", BirthYear: &year, Parents: []string{"3"}, Generation: 4}

	m := d.WithID("abc")
	year = 2000

	assert.Equal(t, "abc", m.ID)
	assert.Equal(t, 1990, *m.BirthYear)
	assert.Equal(t, []string{"3"}, m.Parents)
}

func TestMemberPatch_Apply(t *testing.T) {
	base := FamilyMember{ID: "1", Name: "Omar", Location: "London", Country: "United Kingdom", Generation: 3, BirthYear: intPtr(1968)}

	t.Run("only set fields change", func(t *testing.T) {
		city := "Manchester"
		out := MemberPatch{Location: &city}.Apply(base)

		assert.Equal(t, "Manchester", out.Location)
		assert.Equal(t, "Omar", out.Name)
		assert.Equal(t, 1968, *out.BirthYear)
		assert.Equal(t, "London", base.Location)
	})

	t.Run("birth year can be cleared", func(t *testing.T) {
		var cleared *int
		out := MemberPatch{BirthYear: &cleared}.Apply(base)

		assert.Nil(t, out.BirthYear)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, MemberPatch{}.IsEmpty())
		gen := 4
		assert.False(t, MemberPatch{Generation: &gen}.IsEmpty())
	})
}

func TestCloneAll_IsDeep(t *testing.T) {
	in := []FamilyMember{{ID: "1", Parents: []string{"0"}, BirthYear: intPtr(1950)}}

	out := CloneAll(in)
	out[0].Parents[0] = "changed"
	*out[0].BirthYear = 1

	assert.Equal(t, "0", in[0].Parents[0])
	assert.Equal(t, 1950, *in[0].BirthYear)
	assert.Nil(t, CloneAll(nil))
}

func TestHasParent(t *testing.T) {
	m := FamilyMember{Parents: []string{"a", "b"}}

	assert.True(t, m.HasParent("b"))
	assert.False(t, m.HasParent("c"))
}
