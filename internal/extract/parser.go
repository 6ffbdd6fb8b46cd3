package extract

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"resume-parser-go/internal/types"
)

// Parser 组合联系方式、章节、技能和人名提取，生成解析结果
//
// Parser 构造后不再修改内部状态，可被多个 goroutine 同时使用。
type Parser struct {
	segmenter   *Segmenter
	skills      *SkillMatcher
	names       *NameResolver
	fingerprint string
}

// Option 解析器选项
type Option func(*options)

type options struct {
	nameFallback NameFallback
}

// WithNameFallback 设置人名回退策略
func WithNameFallback(mode NameFallback) Option {
	return func(o *options) {
		o.nameFallback = mode
	}
}

// NewParser 基于规则集创建解析器
func NewParser(rules Rules, opts ...Option) *Parser {
	o := options{nameFallback: NameFallbackStrict}
	for _, opt := range opts {
		opt(&o)
	}
	names := NewNameResolver(rules.ForbiddenNameWords, o.nameFallback)
	return &Parser{
		segmenter:   NewSegmenter(rules.Headers),
		skills:      NewSkillMatcher(rules.Vocabulary),
		names:       names,
		fingerprint: rulesFingerprint(rules, names.fallback),
	}
}

// Fingerprint 规则集和回退策略的摘要，规则不同的解析器摘要不同
func (p *Parser) Fingerprint() string {
	return p.fingerprint
}

func rulesFingerprint(rules Rules, fallback NameFallback) string {
	h := md5.New()
	fmt.Fprintf(h, "fallback=%s\n", fallback)
	for _, skill := range rules.Vocabulary {
		fmt.Fprintf(h, "skill=%s\n", skill)
	}
	for _, rule := range rules.Headers {
		fmt.Fprintf(h, "header=%s:%s\n", rule.Label, strings.Join(rule.Patterns, "|"))
	}
	for _, word := range rules.ForbiddenNameWords {
		fmt.Fprintf(h, "forbidden=%s\n", word)
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// Result 一次解析的完整输出
type Result struct {
	Record       types.ParseRecord `json:"record"`
	Sections     types.Sections    `json:"sections"`
	NameStrategy NameStrategy      `json:"name_strategy"`
}

// Parse 规范化文本后解析
func (p *Parser) Parse(text string, spans []types.TaggedSpan) Result {
	return p.ParseDocument(Normalize(text), spans)
}

// ParseDocument 解析已规范化的文本。spans 为空时使用回退策略。
func (p *Parser) ParseDocument(doc Document, spans []types.TaggedSpan) Result {
	contact := ExtractContact(doc.Raw)
	sections := p.segmenter.Segment(doc.Lines)
	name, strategy := p.names.Resolve(doc.Lines, spans)

	return Result{
		Record: types.ParseRecord{
			Name:       name,
			Email:      contact.Email,
			Phone:      contact.Phone,
			Skills:     p.skills.Match(doc.CleanText, spans),
			Experience: append([]string{}, sections.Experience...),
			Projects:   append([]string{}, sections.Projects...),
		},
		Sections:     sections,
		NameStrategy: strategy,
	}
}

// Skills 返回解析器使用的技能匹配器
func (p *Parser) Skills() *SkillMatcher {
	return p.skills
}
