package extract

import "resume-parser-go/internal/types"

// HeaderRule 章节标题匹配规则：行内包含任一模式即视为该章节标题
type HeaderRule struct {
	Label    types.SectionLabel
	Patterns []string // 小写模式
}

// Rules 解析器的可配置规则集
//
// 解析器只读取 Rules，不修改它；调用方可自由替换词表或标题表。
type Rules struct {
	// Vocabulary 已知技能词表，输出的技能名保持词表中的大小写
	Vocabulary []string
	// Headers 章节标题规则，按顺序匹配，先命中者优先
	Headers []HeaderRule
	// ForbiddenNameWords 出现在候选人名中即判定为非人名的词 (小写)
	ForbiddenNameWords []string
}

var defaultVocabulary = []string{
	"Python", "Java", "C++", "JavaScript", "TypeScript", "React", "Angular", "Vue",
	"Node.js", "Django", "Flask", "FastAPI", "SQL", "NoSQL", "PostgreSQL", "MongoDB",
	"AWS", "Azure", "Google Cloud", "Docker", "Kubernetes", "Git", "Jenkins",
	"Machine Learning", "Deep Learning", "Data Science", "NLP", "TensorFlow", "PyTorch",
	"Pandas", "NumPy", "Scikit-Learn", "Tableau", "Power BI", "Excel",
}

var defaultHeaders = []HeaderRule{
	{Label: types.SectionExperience, Patterns: []string{"experience", "work history", "employment", "professional background"}},
	{Label: types.SectionProjects, Patterns: []string{"projects", "academic projects", "personal projects", "key projects"}},
	{Label: types.SectionEducation, Patterns: []string{"education", "academic qualification", "qualifications"}},
	{Label: types.SectionIgnored, Patterns: []string{
		"extracurricular", "activities", "achievements", "certifications",
		"interests", "skills", "languages", "references",
	}},
}

var defaultForbiddenNameWords = []string{
	"resume", "curriculum", "vitae", "cv", "data",
	"analyst", "scientist", "manager", "developer", "engineer",
}

// DefaultRules 返回内置规则的独立副本
func DefaultRules() Rules {
	return Rules{
		Vocabulary:         DefaultVocabulary(),
		Headers:            cloneHeaders(defaultHeaders),
		ForbiddenNameWords: append([]string(nil), defaultForbiddenNameWords...),
	}
}

// DefaultVocabulary 返回内置技能词表的副本
func DefaultVocabulary() []string {
	return append([]string(nil), defaultVocabulary...)
}

// WithVocabulary 返回替换了技能词表的规则副本，空词表保持原样
func (r Rules) WithVocabulary(vocabulary []string) Rules {
	if len(vocabulary) == 0 {
		return r
	}
	out := r
	out.Vocabulary = append([]string(nil), vocabulary...)
	return out
}

func cloneHeaders(in []HeaderRule) []HeaderRule {
	out := make([]HeaderRule, len(in))
	for i, h := range in {
		out[i] = HeaderRule{Label: h.Label, Patterns: append([]string(nil), h.Patterns...)}
	}
	return out
}
