package constants

import "fmt"

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// TaggerModulePrefix 实体标注模块
	TaggerModulePrefix = "tagger"
	// ParseModulePrefix 解析模块
	ParseModulePrefix = "parse"

	// EntitySpans 标注结果实体
	EntitySpans = "spans"
	// EntityAnalysis 解析结果实体
	EntityAnalysis = "analysis"

	// KeyTaggerSpans 标注结果缓存 (STRING, JSON)
	// 格式: app:tagger:spans:{textMD5}
	KeyTaggerSpans = AppPrefix + ":" + TaggerModulePrefix + ":" + EntitySpans + ":%s"

	// KeyParseAnalysis 解析结果缓存 (STRING, JSON)
	// 格式: app:parse:analysis:{textMD5}:{rulesFingerprint}
	KeyParseAnalysis = AppPrefix + ":" + ParseModulePrefix + ":" + EntityAnalysis + ":%s"
)

// TaggerSpansKey 返回标注结果缓存键
func TaggerSpansKey(textMD5 string) string {
	return fmt.Sprintf(KeyTaggerSpans, textMD5)
}

// ParseAnalysisKey 返回解析结果缓存键
func ParseAnalysisKey(key string) string {
	return fmt.Sprintf(KeyParseAnalysis, key)
}
