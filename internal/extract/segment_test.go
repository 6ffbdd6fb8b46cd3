package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/types"
)

func linesOf(texts ...string) []types.Line {
	out := make([]types.Line, len(texts))
	for i, t := range texts {
		out[i] = types.Line{Text: t, Position: i}
	}
	return out
}

func TestSegmentBulletContinuation(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	sections := seg.Segment(linesOf("Experience", "- Built systems", "and scaled them", "Education", "BS Computer Science"))

	assert.Equal(t, []string{"Built systems and scaled them"}, sections.Experience)
	assert.Equal(t, []string{"BS Computer Science"}, sections.Education)
	assert.Empty(t, sections.Projects)
}

func TestHeaderLabel(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	label, ok := seg.HeaderLabel("Experience")
	require.True(t, ok)
	assert.Equal(t, types.SectionExperience, label)

	_, ok = seg.HeaderLabel("I have 5 years of experience in backend systems")
	assert.False(t, ok, "5个词以上的句子不应视为标题")

	label, ok = seg.HeaderLabel("TECHNICAL SKILLS")
	require.True(t, ok)
	assert.Equal(t, types.SectionIgnored, label)

	label, ok = seg.HeaderLabel("Key Projects")
	require.True(t, ok)
	assert.Equal(t, types.SectionProjects, label)
}

func TestSegmentNarrativeLineStaysInBucket(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	sections := seg.Segment(linesOf(
		"Work History",
		"Backend Engineer, Acme",
		"I have 5 years of experience in backend systems",
	))

	assert.Equal(t, []string{
		"Backend Engineer, Acme",
		"I have 5 years of experience in backend systems",
	}, sections.Experience)
}

func TestSegmentIgnoredSectionStopsAccumulation(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	sections := seg.Segment(linesOf(
		"Projects",
		"• Chat service",
		"Skills",
		"Python, Go",
		"Certifications",
		"AWS Certified",
	))

	assert.Equal(t, []string{"Chat service"}, sections.Projects)
	assert.Empty(t, sections.Experience)
	assert.Empty(t, sections.Education)
}

func TestSegmentLinesBeforeFirstHeaderDiscarded(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	sections := seg.Segment(linesOf("Jane Roe", "Toronto", "Education", "MSc Physics"))

	assert.Empty(t, sections.Experience)
	assert.Empty(t, sections.Projects)
	assert.Equal(t, []string{"MSc Physics"}, sections.Education)
}

func TestSegmentMergeRules(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	sections := seg.Segment(linesOf(
		"Experience",
		"Senior Developer",
		"Acme Corp",
		"Led migration of billing services with",
		"Kafka and Postgres",
		"1. Reduced latency by 40%",
		"2) Mentored",
		"three engineers",
		"Staff Engineer",
	))

	assert.Equal(t, []string{
		"Senior Developer",
		"Acme Corp",
		"Led migration of billing services with Kafka and Postgres",
		"Reduced latency by 40%",
		"Mentored three engineers",
		"Staff Engineer",
	}, sections.Experience)
}

func TestSegmentConnectorRequiresWordBoundary(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	sections := seg.Segment(linesOf("Experience", "Software Engineer, Toronto", "Platform Team"))
	assert.Equal(t, []string{"Software Engineer, Toronto", "Platform Team"}, sections.Experience)

	sections = seg.Segment(linesOf("Experience", "Designed APIs &", "Billing Flows"))
	assert.Equal(t, []string{"Designed APIs & Billing Flows"}, sections.Experience)
}

func TestSegmentBareBulletDropped(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	sections := seg.Segment(linesOf("Education", "-", "• BSc Mathematics"))

	assert.Equal(t, []string{"BSc Mathematics"}, sections.Education)
	for _, entry := range sections.Education {
		assert.NotEmpty(t, entry)
	}
}

func TestSegmentStepIsExplicitFold(t *testing.T) {
	seg := NewSegmenter(DefaultRules().Headers)

	var acc Accumulator
	acc = seg.Step(acc, types.Line{Text: "Projects"})
	assert.Equal(t, types.SectionProjects, acc.Current)
	acc = seg.Step(acc, types.Line{Text: "Resume parser"})
	acc = seg.Step(acc, types.Line{Text: "written in Go"})

	assert.Equal(t, []string{"Resume parser written in Go"}, acc.Sections().Projects)
}

func TestSegmentCustomHeaders(t *testing.T) {
	seg := NewSegmenter([]HeaderRule{
		{Label: types.SectionExperience, Patterns: []string{"berufserfahrung"}},
	})

	sections := seg.Segment(linesOf("Berufserfahrung", "Entwickler bei Foo", "Experience", "Still here"))

	assert.Equal(t, []string{"Entwickler bei Foo", "Experience", "Still here"}, sections.Experience)
}
