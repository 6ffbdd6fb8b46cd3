package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-parser-go/internal/types"
)

func TestScanTextBoundaries(t *testing.T) {
	m := NewSkillMatcher(DefaultVocabulary())

	got := m.ScanText("Built UIs with react and node.js, scripting in C++ and python. Excellent at excel.")

	assert.Equal(t, []string{"C++", "Excel", "Node.js", "Python", "React"}, got)
}

func TestScanTextNoPartialMatches(t *testing.T) {
	m := NewSkillMatcher([]string{"C", "Java", "SQL", "Git", "R"})

	got := m.ScanText("React JavaScript NoSQL GitHub Rust")

	assert.Empty(t, got)
}

func TestScanTextSubsetOfVocabulary(t *testing.T) {
	vocab := []string{"Go", "Machine Learning", "Power BI"}
	m := NewSkillMatcher(vocab)

	got := m.ScanText("go developer, machine learning pipelines, POWER BI dashboards, Kotlin")

	assert.Equal(t, []string{"Go", "Machine Learning", "Power BI"}, got)
	for _, s := range got {
		assert.Contains(t, vocab, s)
	}
}

func TestMatchPrefersTaggerSkills(t *testing.T) {
	m := NewSkillMatcher(DefaultVocabulary())
	spans := []types.TaggedSpan{
		{Text: "docker", Kind: types.SpanSkill},
		{Text: "Docker", Kind: types.SpanSkill},
		{Text: "AWS", Kind: types.SpanSkill},
		{Text: "Cobol", Kind: types.SpanSkill},
		{Text: "Jane Roe", Kind: types.SpanPerson},
	}

	got := m.Match("Python everywhere", spans)

	assert.Equal(t, []string{"AWS", "Docker"}, got)
}

func TestMatchFallsBackWithoutSkillSpans(t *testing.T) {
	m := NewSkillMatcher(DefaultVocabulary())

	got := m.Match("Python and SQL", []types.TaggedSpan{{Text: "Jane Roe", Kind: types.SpanPerson}})

	assert.Equal(t, []string{"Python", "SQL"}, got)
}

func TestSkillMatcherDedupesVocabulary(t *testing.T) {
	m := NewSkillMatcher([]string{"Go", "go", " ", "Rust"})

	assert.Equal(t, []string{"Go", "Rust"}, m.Vocabulary())
	assert.Equal(t, []string{}, m.ScanText(""))
}
