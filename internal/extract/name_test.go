package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

func newResolver(mode NameFallback) *NameResolver {
	return NewNameResolver(DefaultRules().ForbiddenNameWords, mode)
}

func TestResolveStrictFallback(t *testing.T) {
	r := newResolver(NameFallbackStrict)

	name, strategy := r.Resolve(linesOf("John Doe", "Data Scientist", "john.doe@gmail.com"), nil)

	require.NotNil(t, name)
	assert.Equal(t, "John Doe", *name)
	assert.Equal(t, NameStrategyStrict, strategy)
	assert.False(t, r.ValidFallbackCandidate("Data Scientist"))
}

func TestResolveStrictSkipsInvalidLines(t *testing.T) {
	r := newResolver(NameFallbackStrict)

	name, strategy := r.Resolve(linesOf(
		"CURRICULUM VITAE",
		"Jane",
		"Agent 007 Bond",
		"jane roe",
		"Jane Q Public Roe Smith",
		"Jane Roe",
	), nil)

	require.NotNil(t, name)
	assert.Equal(t, "Jane Roe", *name)
	assert.Equal(t, NameStrategyStrict, strategy)
}

func TestResolveStrictOnlyFirstTenLines(t *testing.T) {
	r := newResolver(NameFallbackStrict)
	lines := make([]string, 0, 11)
	for i := 0; i < 10; i++ {
		lines = append(lines, "x")
	}
	lines = append(lines, "Jane Roe")

	name, strategy := r.Resolve(linesOf(lines...), nil)

	assert.Nil(t, name)
	assert.Equal(t, NameStrategyNone, strategy)
}

func TestResolvePrefersTaggerSpans(t *testing.T) {
	r := newResolver(NameFallbackStrict)
	spans := []types.TaggedSpan{
		{Text: "Python", Kind: types.SpanSkill},
		{Text: "Madonna", Kind: types.SpanPerson},
		{Text: "Data Manager Team", Kind: types.SpanPerson},
		{Text: "R2 D2", Kind: types.SpanPerson},
		{Text: "  Ada King Lovelace Byron Noel  ", Kind: types.SpanPerson},
	}

	name, strategy := r.Resolve(linesOf("John Doe"), spans)

	require.NotNil(t, name)
	assert.Equal(t, "Ada King Lovelace Byron Noel", *name)
	assert.Equal(t, NameStrategyTagger, strategy)
}

func TestResolveTaggerMissFallsBack(t *testing.T) {
	r := newResolver(NameFallbackStrict)

	name, strategy := r.Resolve(linesOf("John Doe"), []types.TaggedSpan{{Text: "Resume Builder", Kind: types.SpanPerson}})

	require.NotNil(t, name)
	assert.Equal(t, "John Doe", *name)
	assert.Equal(t, NameStrategyStrict, strategy)
}

func TestResolveLooseFallback(t *testing.T) {
	r := newResolver(NameFallbackLoose)

	name, strategy := r.Resolve(linesOf("resume", "John Doe-Smith, PhD", "Jane Roe"), nil)

	require.NotNil(t, name)
	assert.Equal(t, "John Doe-Smith, PhD", *name)
	assert.Equal(t, NameStrategyLoose, strategy)

	name, strategy = r.Resolve(linesOf("a", "b", "c", "d", "e", "Jane Roe"), nil)
	assert.Nil(t, name)
	assert.Equal(t, NameStrategyNone, strategy)
}

func TestResolveLooseSkipsHeadingsAndTitles(t *testing.T) {
	r := newResolver(NameFallbackLoose)

	for _, first := range []string{
		"Curriculum Vitae",
		"Senior Software Engineer At Google Cloud Platform",
		"Data Scientist",
		"Professional Summary",
		"Contact Information",
		"Profile",
	} {
		t.Run(first, func(t *testing.T) {
			name, strategy := r.Resolve(linesOf(first, "John Doe"), nil)

			require.NotNil(t, name)
			assert.Equal(t, "John Doe", *name)
			assert.Equal(t, NameStrategyLoose, strategy)
		})
	}
}

func TestResolveLooseAllowsDigits(t *testing.T) {
	r := newResolver(NameFallbackLoose)

	name, strategy := r.Resolve(linesOf("Mary Ann Lee 2nd"), nil)

	require.NotNil(t, name)
	assert.Equal(t, "Mary Ann Lee 2nd", *name)
	assert.Equal(t, NameStrategyLoose, strategy)
	assert.False(t, r.ValidFallbackCandidate("Mary Ann Lee 2nd"))
}
