package processor

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/extract"
	"resume-parser-go/internal/notify"
	"resume-parser-go/internal/tagger"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// WithExtractor 设置文档转文本组件
func WithExtractor(e DocumentExtractor) ComponentOpt {
	return func(c *Components) {
		c.Extractor = e
	}
}

// WithParser 设置核心解析器
func WithParser(p *extract.Parser) ComponentOpt {
	return func(c *Components) {
		c.Parser = p
	}
}

// WithTagger 设置实体标注器
func WithTagger(t tagger.Tagger) ComponentOpt {
	return func(c *Components) {
		c.Tagger = t
	}
}

// WithNotifier 设置入围通知器
func WithNotifier(n notify.Notifier) ComponentOpt {
	return func(c *Components) {
		c.Notifier = n
	}
}

// WithAnalysisCache 设置解析结果缓存，nil 表示不缓存
func WithAnalysisCache(cache AnalysisCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// WithMaxUploadBytes 设置上传大小上限
func WithMaxUploadBytes(n int64) SettingOpt {
	return func(s *Settings) {
		if n > 0 {
			s.MaxUploadBytes = n
		}
	}
}

// WithShortlistThreshold 设置入围分数线
func WithShortlistThreshold(threshold int) SettingOpt {
	return func(s *Settings) {
		if threshold > 0 {
			s.ShortlistThreshold = threshold
		}
	}
}

// WithCacheTTL 设置解析结果缓存时长
func WithCacheTTL(ttl time.Duration) SettingOpt {
	return func(s *Settings) {
		if ttl > 0 {
			s.CacheTTL = ttl
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(log zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = log
	}
}

// WithTracer 设置追踪器
func WithTracer(tracer trace.Tracer) SettingOpt {
	return func(s *Settings) {
		if tracer != nil {
			s.Tracer = tracer
		}
	}
}
