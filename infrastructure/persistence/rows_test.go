package persistence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazboun-backend/domain/core/entities"
)

func TestMemberRow_FromPostgREST(t *testing.T) {
	body := `{"id":"8","name":"Sami Hazboun","birth_year":null,"location":"Dubai","country":"UAE",
		"email":null,"phone":"","profession":"Architect","branch":"Arabian Gulf Branch","generation":3,
		"parents":["4"],"bio":null}`

	var row MemberRow
	require.NoError(t, json.Unmarshal([]byte(body), &row))
	m := row.ToMember()

	assert.Equal(t, "8", m.ID)
	assert.Nil(t, m.BirthYear)
	assert.Equal(t, "", m.Email)
	assert.Equal(t, "Architect", m.Profession)
	assert.Equal(t, []string{"4"}, m.Parents)
}

func TestRowFromDraft_NullsEmptyOptionals(t *testing.T) {
	row := RowFromDraft(entities.MemberDraft{Name: "Dina", Generation: 2})

	data, err := json.Marshal(row)
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"Dina","birth_year":null,"location":"","country":"","email":null,"phone":null,
		"profession":null,"branch":"","generation":2,"parents":[],"bio":null}`, string(data))
}

func TestPatchColumns(t *testing.T) {
	city := "Irbid"
	empty := ""
	var noYear *int
	gen := 4

	cols := PatchColumns(entities.MemberPatch{Location: &city, Email: &empty, BirthYear: &noYear, Generation: &gen})

	assert.Equal(t, map[string]interface{}{
		ColLocation:   "Irbid",
		ColEmail:      nil,
		ColBirthYear:  nil,
		ColGeneration: 4,
	}, cols)
	assert.Empty(t, PatchColumns(entities.MemberPatch{}))
}

func TestParentsEncoding(t *testing.T) {
	assert.Equal(t, `["1","2"]`, EncodeParents([]string{"1", "2"}))
	assert.Equal(t, `[]`, EncodeParents(nil))

	assert.Equal(t, []string{"1", "2"}, DecodeParents(`["1","2"]`))
	assert.Equal(t, []string{"a", "b c"}, DecodeParents(`{a,"b c"}`))
	assert.Nil(t, DecodeParents(`{}`))
	assert.Nil(t, DecodeParents(``))
	assert.Nil(t, DecodeParents(`null`))
}
