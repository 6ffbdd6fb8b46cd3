package extract

import (
	"strings"

	"resume-parser-go/internal/types"
)

var lineBreakReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n", "\v", "\n", "\u2028", "\n", "\u2029", "\n")

// Document 规范化后的简历文本
type Document struct {
	Raw       string       // 原始文本，联系方式提取使用
	Lines     []types.Line // 非空行，保持原文顺序
	CleanText string       // 所有行以单个空格拼接
}

// Normalize 按行切分、去除首尾空白并丢弃空行
func Normalize(raw string) Document {
	doc := Document{Raw: raw, Lines: []types.Line{}}
	if raw == "" {
		return doc
	}

	parts := strings.Split(lineBreakReplacer.Replace(raw), "\n")
	texts := make([]string, 0, len(parts))
	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		doc.Lines = append(doc.Lines, types.Line{Text: trimmed, Position: i})
		texts = append(texts, trimmed)
	}
	doc.CleanText = strings.Join(texts, " ")
	return doc
}
