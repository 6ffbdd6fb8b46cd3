package extract

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

// NameStrategy 人名识别所采用的策略
type NameStrategy string

const (
	// NameStrategyNone 未识别出人名
	NameStrategyNone NameStrategy = "none"
	// NameStrategyTagger 采用实体标注器的人名结果
	NameStrategyTagger NameStrategy = "tagger"
	// NameStrategyStrict 前10行的严格启发式
	NameStrategyStrict NameStrategy = "strict"
	// NameStrategyLoose 前5行的宽松启发式
	NameStrategyLoose NameStrategy = "loose"
)

// NameFallback 标注器无结果时的回退方式
type NameFallback string

const (
	NameFallbackStrict NameFallback = "strict"
	NameFallbackLoose  NameFallback = "loose"
)

const (
	strictScanLines = 10
	looseScanLines  = 5
)

var looseNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z]+ [A-Z][A-Za-z]+`)

// looseHeadingWords 宽松模式额外排除的标题类词
var looseHeadingWords = []string{"resume", "curriculum", "vitae", "summary", "profile", "contact"}

// NameResolver 依次尝试标注结果和回退启发式来确定候选人姓名
type NameResolver struct {
	forbidden      []string
	looseForbidden []string
	fallback       NameFallback
}

// NewNameResolver 创建人名识别器，未知的回退方式按严格模式处理
func NewNameResolver(forbidden []string, fallback NameFallback) *NameResolver {
	words := make([]string, 0, len(forbidden))
	for _, w := range forbidden {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	if fallback != NameFallbackLoose {
		fallback = NameFallbackStrict
	}
	loose := append([]string(nil), words...)
	for _, w := range looseHeadingWords {
		if !slices.Contains(loose, w) {
			loose = append(loose, w)
		}
	}
	return &NameResolver{forbidden: words, looseForbidden: loose, fallback: fallback}
}

// Resolve 返回识别出的人名 (可能为 nil) 及所用策略
func (r *NameResolver) Resolve(lines []types.Line, spans []types.TaggedSpan) (*string, NameStrategy) {
	if name, ok := r.fromSpans(spans); ok {
		return &name, NameStrategyTagger
	}
	if r.fallback == NameFallbackLoose {
		if name, ok := r.loose(lines); ok {
			return &name, NameStrategyLoose
		}
		return nil, NameStrategyNone
	}
	if name, ok := r.strict(lines); ok {
		return &name, NameStrategyStrict
	}
	return nil, NameStrategyNone
}

func (r *NameResolver) fromSpans(spans []types.TaggedSpan) (string, bool) {
	for _, span := range spans {
		if span.Kind != types.SpanPerson {
			continue
		}
		candidate := strings.TrimSpace(span.Text)
		if len(strings.Fields(candidate)) < 2 || hasDigit(candidate) || r.containsForbidden(candidate) {
			continue
		}
		return candidate, true
	}
	return "", false
}

func (r *NameResolver) strict(lines []types.Line) (string, bool) {
	for i, line := range lines {
		if i >= strictScanLines {
			break
		}
		if r.ValidFallbackCandidate(line.Text) {
			return line.Text, true
		}
	}
	return "", false
}

func (r *NameResolver) loose(lines []types.Line) (string, bool) {
	for i, line := range lines {
		if i >= looseScanLines {
			break
		}
		if r.validLooseCandidate(line.Text) {
			return line.Text, true
		}
	}
	return "", false
}

// validLooseCandidate 宽松启发式：2-4个词、不含禁用词或标题词、开头两个词首字母大写。
// 不要求全为字母。
func (r *NameResolver) validLooseCandidate(text string) bool {
	n := len(strings.Fields(text))
	if n < 2 || n > 4 {
		return false
	}
	if containsWord(text, r.looseForbidden) {
		return false
	}
	return looseNamePattern.MatchString(text)
}

// ValidFallbackCandidate 严格启发式的判定：2-4个词、去空格后全为字母、
// 首字母大写、且不含禁用词
func (r *NameResolver) ValidFallbackCandidate(text string) bool {
	text = strings.TrimSpace(text)
	tokens := strings.Fields(text)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		for _, c := range tok {
			if !unicode.IsLetter(c) {
				return false
			}
		}
	}
	first, _ := utf8.DecodeRuneInString(text)
	if !unicode.IsUpper(first) {
		return false
	}
	return !r.containsForbidden(text)
}

func (r *NameResolver) containsForbidden(candidate string) bool {
	return containsWord(candidate, r.forbidden)
}

// containsWord 任一词是否为候选文本中某个词的子串 (不区分大小写)
func containsWord(candidate string, words []string) bool {
	for _, tok := range strings.Fields(strings.ToLower(candidate)) {
		for _, word := range words {
			if strings.Contains(tok, word) {
				return true
			}
		}
	}
	return false
}


func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
