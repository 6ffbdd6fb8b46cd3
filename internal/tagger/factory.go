package tagger

import (
	"fmt"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/ratelimit"
)

// Build 按配置组装标注器。cache 为 nil 时不启用缓存。
func Build(cfg config.TaggerConfig, vocabulary []string, cache SpanCache) (Tagger, error) {
	log := logger.Component("tagger")

	var t Tagger
	switch cfg.Mode {
	case "", "none":
		return NullTagger{}, nil
	case "vocabulary":
		return NewVocabularyTagger(vocabulary), nil
	case "http":
		t = newHTTPFromConfig(cfg)
	case "chain":
		t = NewChainTagger(log, cfg.AllowFailures, newHTTPFromConfig(cfg), NewVocabularyTagger(vocabulary))
	default:
		return nil, fmt.Errorf("不支持的标注器模式: %s", cfg.Mode)
	}

	if cfg.CacheSpans && cache != nil {
		ttl := config.GetDuration(cfg.CacheTTL, constants.DefaultSpanCacheTTL)
		t = NewCachedTagger(t, cache, ttl, log)
	}
	return t, nil
}

func newHTTPFromConfig(cfg config.TaggerConfig) *HTTPTagger {
	limiter := ratelimit.NewTokenBucket(cfg.QPM, 0,
		ratelimit.WithRetryPolicy(config.GetDuration(cfg.RetryWait, 0), cfg.MaxRetries))
	return NewHTTPTagger(cfg.Endpoint, config.GetDuration(cfg.Timeout, 0), WithRateLimiter(limiter))
}
