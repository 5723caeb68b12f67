package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazboun-backend/pkg/errors"
	"hazboun-backend/tests/fixtures"
)

func TestEncodeDirectory(t *testing.T) {
	data, err := EncodeDirectory(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	m := fixtures.NewMember("1").Named("Elias Hazboun").BornIn(1920).Build()
	data, err = EncodeDirectory([]fixtures.Member{m})
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "id": "1",
    "name": "Elias Hazboun",
    "birthYear": 1920,
    "location": "Bethlehem",
    "country": "Palestine",
    "branch": "Palestine Branch",
    "generation": 1
  }
]`, string(data))
}

func TestDirectoryRoundTrip(t *testing.T) {
	family := fixtures.Family()

	data, err := EncodeDirectory(family)
	require.NoError(t, err)
	back, err := DecodeDirectory(data)
	require.NoError(t, err)

	assert.Equal(t, family, back)
}

func TestDecodeDirectory_Rejects(t *testing.T) {
	tests := map[string]struct {
		body    string
		message string
	}{
		"object":   {`{"id":"1"}`, errors.MessageImportFormat},
		"null":     {`null`, errors.MessageImportFormat},
		"string":   {`"members"`, errors.MessageImportFormat},
		"number":   {`42`, errors.MessageImportFormat},
		"empty":    {``, errors.MessageImportRead},
		"broken":   {`[{"id":"1"`, errors.MessageImportRead},
		"not json": {`id,name\n1,Elias`, errors.MessageImportRead},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDirectory([]byte(tt.body))

			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeImportFormat))
			assert.Equal(t, tt.message, errors.GetAppError(err).Message)
		})
	}
}

func TestDecodeDirectory_Permissive(t *testing.T) {
	members, err := DecodeDirectory([]byte(` [{"id":"9","name":"  Only A Name ","extra":true}, {}] `))

	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Only A Name", members[0].Name)
	assert.Equal(t, 0, members[0].Generation)
}

func TestDecodeDirectory_LooseRecordShapes(t *testing.T) {
	t.Run("numeric ids and parents", func(t *testing.T) {
		members, err := DecodeDirectory([]byte(`[{"id":7,"name":"Elias","parents":[1, "2", null]}]`))

		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, "7", members[0].ID)
		assert.Equal(t, []string{"1", "2"}, members[0].Parents)
	})

	t.Run("numeric strings for generation and birth year", func(t *testing.T) {
		members, err := DecodeDirectory([]byte(`[{"generation":"2","birthYear":" 1950 "}]`))

		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, 2, members[0].Generation)
		require.NotNil(t, members[0].BirthYear)
		assert.Equal(t, 1950, *members[0].BirthYear)
	})

	t.Run("unreadable numbers are left empty", func(t *testing.T) {
		members, err := DecodeDirectory([]byte(`[{"id":"1","generation":"two","birthYear":""}]`))

		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, 0, members[0].Generation)
		assert.Nil(t, members[0].BirthYear)
	})

	t.Run("non-object elements become empty records", func(t *testing.T) {
		members, err := DecodeDirectory([]byte(`[1, "x", null, {"id":"3"}]`))

		require.NoError(t, err)
		require.Len(t, members, 4)
		assert.Equal(t, fixtures.Member{}, members[0])
		assert.Equal(t, fixtures.Member{}, members[1])
		assert.Equal(t, fixtures.Member{}, members[2])
		assert.Equal(t, "3", members[3].ID)
	})
}
