// Package scoring 计算解析结果的置信度，以及与岗位技能要求的匹配度。
package scoring

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/types"
)

// Confidence 邮箱 40 分、电话 40 分、至少一项技能 20 分
func Confidence(record types.ParseRecord) int {
	score := 0
	if record.Email != nil {
		score += 40
	}
	if record.Phone != nil {
		score += 40
	}
	if len(record.Skills) > 0 {
		score += 20
	}
	return score
}

// JobMatch 技能匹配结果
type JobMatch struct {
	Score          int      `json:"score"`
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	IsShortlisted  bool     `json:"is_shortlisted"`
	EmailSent      bool     `json:"email_sent"`
	RecruiterEmail *string  `json:"recruiter_email"`
}

// ParseRequirements 拆分逗号分隔的技能要求：去空白、转小写、去掉空项和重复项，保持顺序
func ParseRequirements(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		req := strings.ToLower(strings.TrimSpace(part))
		if req == "" {
			continue
		}
		if _, dup := seen[req]; dup {
			continue
		}
		seen[req] = struct{}{}
		out = append(out, req)
	}
	return out
}

// Match 计算 100 * 命中数 / 要求数 (整数截断)。
// 要求为空时返回 nil。命中项使用简历中的写法，未命中项转为首字母大写。
func Match(required []string, skills []string, threshold int) *JobMatch {
	if len(required) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = constants.DefaultShortlistThreshold
	}

	canonical := make(map[string]string, len(skills))
	for _, s := range skills {
		canonical[strings.ToLower(s)] = s
	}

	title := cases.Title(language.English)
	m := &JobMatch{MatchingSkills: []string{}, MissingSkills: []string{}}
	for _, req := range required {
		if name, ok := canonical[req]; ok {
			m.MatchingSkills = append(m.MatchingSkills, name)
		} else {
			m.MissingSkills = append(m.MissingSkills, title.String(req))
		}
	}

	m.Score = 100 * len(m.MatchingSkills) / len(required)
	m.IsShortlisted = m.Score >= threshold
	return m
}

// MatchRequirements 以逗号分隔的原始要求计算匹配结果
func MatchRequirements(required string, skills []string, threshold int) *JobMatch {
	return Match(ParseRequirements(required), skills, threshold)
}
