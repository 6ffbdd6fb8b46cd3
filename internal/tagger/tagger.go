// Package tagger 提供可替换的实体标注器：给定文本，返回人名/技能片段。
// 标注失败时调用方按无标注处理，核心解析退回启发式策略。
package tagger

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"resume-parser-go/internal/extract"
	"resume-parser-go/internal/types"
)

// Tagger 实体标注器
type Tagger interface {
	Tag(ctx context.Context, text string) ([]types.TaggedSpan, error)
}

// NullTagger 不可用的标注器，总是返回空结果
type NullTagger struct{}

var _ Tagger = NullTagger{}

func (NullTagger) Tag(context.Context, string) ([]types.TaggedSpan, error) {
	return nil, nil
}

// VocabularyTagger 基于词表的规则标注器，只产生技能实体
type VocabularyTagger struct {
	matcher *extract.SkillMatcher
}

var _ Tagger = (*VocabularyTagger)(nil)

// NewVocabularyTagger 使用给定词表创建规则标注器
func NewVocabularyTagger(vocabulary []string) *VocabularyTagger {
	return &VocabularyTagger{matcher: extract.NewSkillMatcher(vocabulary)}
}

func (t *VocabularyTagger) Tag(_ context.Context, text string) ([]types.TaggedSpan, error) {
	skills := t.matcher.ScanText(text)
	spans := make([]types.TaggedSpan, 0, len(skills))
	for _, s := range skills {
		spans = append(spans, types.TaggedSpan{Text: s, Kind: types.SpanSkill})
	}
	return spans, nil
}

// ChainTagger 按顺序调用多个标注器并合并结果
type ChainTagger struct {
	taggers       []Tagger
	allowFailures bool
	log           zerolog.Logger
}

var _ Tagger = (*ChainTagger)(nil)

// NewChainTagger 创建组合标注器。allowFailures 为 true 时单个标注器失败不影响其余结果。
func NewChainTagger(log zerolog.Logger, allowFailures bool, taggers ...Tagger) *ChainTagger {
	return &ChainTagger{taggers: taggers, allowFailures: allowFailures, log: log}
}

// Tag 合并各标注器的结果，保持顺序。返回的错误汇总了所有失败，
// 此时 spans 仍包含成功部分的结果。
func (c *ChainTagger) Tag(ctx context.Context, text string) ([]types.TaggedSpan, error) {
	var spans []types.TaggedSpan
	var errs []error
	for _, t := range c.taggers {
		got, err := t.Tag(ctx, text)
		if err != nil {
			if !c.allowFailures {
				return nil, err
			}
			c.log.Warn().Err(err).Msg("标注器调用失败，跳过")
			errs = append(errs, err)
			continue
		}
		spans = append(spans, got...)
	}
	return spans, errors.Join(errs...)
}
