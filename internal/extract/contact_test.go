package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContact(t *testing.T) {
	info := ExtractContact("Email: john.doe@gmail.com\nPhone: 555-019-2834")

	require.NotNil(t, info.Email)
	require.NotNil(t, info.Phone)
	assert.Equal(t, "john.doe@gmail.com", *info.Email)
	assert.Equal(t, "555-019-2834", *info.Phone)
}

func TestExtractContactFirstMatchWins(t *testing.T) {
	info := ExtractContact("a.b+cv@mail.example.org or c@d.io\n+1 (415) 555-0100 / 212.555.0199")

	require.NotNil(t, info.Email)
	assert.Equal(t, "a.b+cv@mail.example.org", *info.Email)
	require.NotNil(t, info.Phone)
	assert.Equal(t, "+1 (415) 555-0100", *info.Phone)
}

func TestExtractContactAbsent(t *testing.T) {
	info := ExtractContact("No contact here, graduated 2019 - 2021")

	assert.Nil(t, info.Email)
	assert.Nil(t, info.Phone)

	info = ExtractContact("")
	assert.Nil(t, info.Email)
	assert.Nil(t, info.Phone)
}
