package extract

import (
	"regexp"

	"resume-parser-go/internal/types"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?(\(?\d{3}\)?[-.\s]?)?\d{3}[-.\s]?\d{4}`)
)

// ExtractContact 在原始文本中查找第一个邮箱和第一个电话号码
//
// 未找到的字段保持为 nil。
func ExtractContact(raw string) types.ContactInfo {
	var info types.ContactInfo
	if m := emailPattern.FindString(raw); m != "" {
		info.Email = &m
	}
	if m := phonePattern.FindString(raw); m != "" {
		info.Phone = &m
	}
	return info
}
