package tagger

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog"

	"resume-parser-go/internal/types"
)

// SpanCache 标注结果缓存，storage.Redis 实现了该接口
type SpanCache interface {
	GetSpans(ctx context.Context, textMD5 string) ([]types.TaggedSpan, bool, error)
	SetSpans(ctx context.Context, textMD5 string, spans []types.TaggedSpan, ttl time.Duration) error
}

// CachedTagger 以文本 MD5 为键缓存下游标注器的结果，缓存故障时直接调用下游
type CachedTagger struct {
	next  Tagger
	cache SpanCache
	ttl   time.Duration
	log   zerolog.Logger
}

var _ Tagger = (*CachedTagger)(nil)

// NewCachedTagger 包装一个标注器
func NewCachedTagger(next Tagger, cache SpanCache, ttl time.Duration, log zerolog.Logger) *CachedTagger {
	return &CachedTagger{next: next, cache: cache, ttl: ttl, log: log}
}

func (c *CachedTagger) Tag(ctx context.Context, text string) ([]types.TaggedSpan, error) {
	key := TextMD5(text)

	spans, found, err := c.cache.GetSpans(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("text_md5", key).Msg("读取标注缓存失败")
	} else if found {
		return spans, nil
	}

	spans, err = c.next.Tag(ctx, text)
	if err != nil {
		return spans, err
	}
	if err := c.cache.SetSpans(ctx, key, spans, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("text_md5", key).Msg("写入标注缓存失败")
	}
	return spans, nil
}

// TextMD5 返回文本的 MD5 十六进制串
func TextMD5(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
