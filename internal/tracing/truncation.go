package tracing

import (
	"strings"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200
	// MaxRedisLength Redis键最大长度
	MaxRedisLength = 100
)

// piiKeywords 属性名包含这些关键字时，值需要掩码
var piiKeywords = []string{
	"email", "phone", "password", "name", "姓名", "address", "地址", "secret", "token", "key",
}

// SafeAttributeValue 对敏感字段掩码，其余字段按 maxLength 截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range piiKeywords {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 对个人敏感信息进行掩码处理
//
//	"张三" -> "张*", "王小明" -> "王*明"
//	"john.doe@gmail.com" -> "jo**************om"
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	length := len(runes)
	switch {
	case length == 1:
		return "*"
	case length == 2:
		return string(runes[0]) + "*"
	case length <= 4:
		return string(runes[0]) + strings.Repeat("*", length-2) + string(runes[length-1])
	}
	return string(runes[0:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
}

// MaskOptional 掩码可选字段，nil 返回空串
func MaskOptional(value *string) string {
	if value == nil {
		return ""
	}
	return MaskPII(*value)
}

// TruncateString 超长时保留首尾，中间以省略号连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeRedisKey 截断过长的 Redis 键
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}
