package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-parser-go/internal/types"
)

// maxHeaderTokens 标题行的词数必须小于该值
const maxHeaderTokens = 5

var (
	bulletPattern    = regexp.MustCompile(`^\s*(?:[-*•●○▪▫➢→>]|(?:\d+|[A-Za-z])[.)])`)
	bulletMarker     = regexp.MustCompile(`^\s*(?:[-*•●○▪▫➢→>]+\s*|(?:\d+|[A-Za-z])[.)]\s+)`)
	connectorPattern = regexp.MustCompile(`(?i)(?:[,&]|\b(?:and|with|to|for|of|in|on|at|by|from))\s*$`)
)

// Segmenter 将行序列划分为经历、项目、教育三个章节
type Segmenter struct {
	headers []HeaderRule
}

// NewSegmenter 使用给定的标题规则创建分段器
func NewSegmenter(headers []HeaderRule) *Segmenter {
	return &Segmenter{headers: cloneHeaders(headers)}
}

// Accumulator 分段过程中的状态：当前章节标签和三个章节的条目
type Accumulator struct {
	Current    types.SectionLabel
	Experience []string
	Projects   []string
	Education  []string
}

// Segment 对行序列做一次从左到右的折叠
func (s *Segmenter) Segment(lines []types.Line) types.Sections {
	var acc Accumulator
	for _, line := range lines {
		acc = s.Step(acc, line)
	}
	return acc.Sections()
}

// Step 处理一行并返回新的状态。传入的 acc 不应再被调用方使用。
func (s *Segmenter) Step(acc Accumulator, line types.Line) Accumulator {
	if label, ok := s.HeaderLabel(line.Text); ok {
		acc.Current = label
		return acc
	}

	switch acc.Current {
	case types.SectionExperience:
		acc.Experience = appendEntry(acc.Experience, line.Text)
	case types.SectionProjects:
		acc.Projects = appendEntry(acc.Projects, line.Text)
	case types.SectionEducation:
		acc.Education = appendEntry(acc.Education, line.Text)
	}
	return acc
}

// HeaderLabel 判断一行是否为章节标题
func (s *Segmenter) HeaderLabel(text string) (types.SectionLabel, bool) {
	if len(strings.Fields(text)) >= maxHeaderTokens {
		return types.SectionNone, false
	}
	lowered := strings.ToLower(text)
	for _, rule := range s.headers {
		for _, pattern := range rule.Patterns {
			if strings.Contains(lowered, pattern) {
				return rule.Label, true
			}
		}
	}
	return types.SectionNone, false
}

// Sections 返回非 nil 的章节结果
func (acc Accumulator) Sections() types.Sections {
	return types.Sections{
		Experience: nonNil(acc.Experience),
		Projects:   nonNil(acc.Projects),
		Education:  nonNil(acc.Education),
	}
}

func appendEntry(bucket []string, line string) []string {
	if len(bucket) == 0 || isBullet(line) {
		return appendNew(bucket, line)
	}

	last := bucket[len(bucket)-1]
	if startsLower(line) || connectorPattern.MatchString(last) {
		bucket[len(bucket)-1] = last + " " + line
		return bucket
	}
	return appendNew(bucket, line)
}

// appendNew 去掉项目符号后追加为新条目，去掉后为空的行直接丢弃
func appendNew(bucket []string, line string) []string {
	entry := strings.TrimSpace(bulletMarker.ReplaceAllString(line, ""))
	if entry == "" {
		return bucket
	}
	return append(bucket, entry)
}

func isBullet(line string) bool {
	return bulletPattern.MatchString(line)
}

func startsLower(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return unicode.IsLower(r)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
