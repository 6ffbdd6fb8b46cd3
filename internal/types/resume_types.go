package types

// SectionLabel 表示简历行所属的章节标签
type SectionLabel string

const (
	// SectionNone 尚未遇到任何章节标题
	SectionNone SectionLabel = ""
	// SectionExperience 工作经历章节
	SectionExperience SectionLabel = "EXPERIENCE"
	// SectionProjects 项目经历章节
	SectionProjects SectionLabel = "PROJECTS"
	// SectionEducation 教育经历章节
	SectionEducation SectionLabel = "EDUCATION"
	// SectionIgnored 已识别但不输出的章节 (技能、证书、兴趣等)
	SectionIgnored SectionLabel = "IGNORED"
)

// SpanKind 实体标注器返回的实体类别
type SpanKind string

const (
	// SpanPerson 人名
	SpanPerson SpanKind = "PERSON"
	// SpanSkill 技能
	SpanSkill SpanKind = "SKILL"
)

// TaggedSpan 实体标注器识别出的一段文本
type TaggedSpan struct {
	Text string   `json:"text"`
	Kind SpanKind `json:"label"`
}

// Line 规范化后的非空文本行
type Line struct {
	Text     string // 去除首尾空白后的内容
	Position int    // 在原始文本中的行号 (从0开始)
}

// ContactInfo 联系方式
type ContactInfo struct {
	Email *string
	Phone *string
}

// Sections 分段结果，每个章节内保持原文顺序
type Sections struct {
	Experience []string `json:"experience"`
	Projects   []string `json:"projects"`
	Education  []string `json:"education"`
}

// ParseRecord 单份简历的结构化解析结果
//
// 字段缺失时以 null 表示；列表字段总是输出数组。
type ParseRecord struct {
	Name       *string  `json:"Name"`
	Email      *string  `json:"Email"`
	Phone      *string  `json:"Phone"`
	Skills     []string `json:"Skills"`
	Experience []string `json:"Experience"`
	Projects   []string `json:"Projects"`
}

// Clone 返回记录的深拷贝
func (r ParseRecord) Clone() ParseRecord {
	return ParseRecord{
		Name:       cloneString(r.Name),
		Email:      cloneString(r.Email),
		Phone:      cloneString(r.Phone),
		Skills:     cloneSlice(r.Skills),
		Experience: cloneSlice(r.Experience),
		Projects:   cloneSlice(r.Projects),
	}
}

// StringValue 将可选字符串转为普通字符串，nil 返回空串
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneSlice(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
