package extract

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"resume-parser-go/internal/types"
)

// SkillMatcher 基于固定词表的技能匹配器，构造后只读，可并发使用
type SkillMatcher struct {
	entries   []skillEntry
	canonical map[string]string // 折叠后 -> 词表原始写法
}

type skillEntry struct {
	name    string
	pattern *regexp.Regexp
}

// NewSkillMatcher 为词表中的每一项预编译边界安全的匹配模式
//
// 模式要求前面是文本开头或非单词字符，后面是非单词字符或文本结尾，
// 因此 "C++"、"Node.js" 这类以符号结尾的条目也能正确匹配。
func NewSkillMatcher(vocabulary []string) *SkillMatcher {
	fold := cases.Fold()
	m := &SkillMatcher{canonical: make(map[string]string, len(vocabulary))}
	for _, name := range vocabulary {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		folded := fold.String(name)
		if _, dup := m.canonical[folded]; dup {
			continue
		}
		m.canonical[folded] = name
		m.entries = append(m.entries, skillEntry{
			name:    name,
			pattern: regexp.MustCompile(`(?:^|\W)` + regexp.QuoteMeta(folded) + `(?:\W|$)`),
		})
	}
	return m
}

// Match 返回排序去重后的技能集合
//
// 只要 spans 中存在技能类实体就采用标注结果，否则退回词表扫描。
func (m *SkillMatcher) Match(cleanText string, spans []types.TaggedSpan) []string {
	if skills, ok := m.FromSpans(spans); ok {
		return skills
	}
	return m.ScanText(cleanText)
}

// ScanText 在大小写折叠后的文本中查找词表条目
func (m *SkillMatcher) ScanText(cleanText string) []string {
	found := []string{}
	if cleanText == "" {
		return found
	}
	folded := cases.Fold().String(cleanText)
	for _, e := range m.entries {
		if e.pattern.MatchString(folded) {
			found = append(found, e.name)
		}
	}
	sort.Strings(found)
	return found
}

// FromSpans 将技能实体规范为词表写法，词表外的实体被丢弃。
// 第二个返回值表示输入中是否存在技能类实体。
func (m *SkillMatcher) FromSpans(spans []types.TaggedSpan) ([]string, bool) {
	fold := cases.Fold()
	seen := make(map[string]struct{})
	found := []string{}
	present := false
	for _, span := range spans {
		if span.Kind != types.SpanSkill {
			continue
		}
		present = true
		name, ok := m.canonical[fold.String(strings.TrimSpace(span.Text))]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		found = append(found, name)
	}
	sort.Strings(found)
	return found, present
}

// Vocabulary 返回去重后的词表副本
func (m *SkillMatcher) Vocabulary() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.name
	}
	return out
}
