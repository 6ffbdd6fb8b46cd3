// Package processor 串联文档转文本、实体标注、核心解析、打分和通知。
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/extract"
	"resume-parser-go/internal/notify"
	"resume-parser-go/internal/scoring"
	"resume-parser-go/internal/tagger"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

// DocumentExtractor 按文件名分发的文档转文本组件，parser.DocumentExtractor 实现了该接口
type DocumentExtractor interface {
	Supports(filename string) bool
	Extract(ctx context.Context, filename string, data []byte) (string, map[string]interface{}, error)
}

// AnalysisCache 解析结果缓存，storage.Redis 实现了该接口。
// 键由文本 MD5 和解析规则摘要组成。
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, key string, v interface{}) (bool, error)
	SetAnalysis(ctx context.Context, key string, v interface{}, ttl time.Duration) error
}

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	Extractor DocumentExtractor
	Parser    *extract.Parser
	Tagger    tagger.Tagger
	Notifier  notify.Notifier
	Cache     AnalysisCache
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	MaxUploadBytes     int64
	ShortlistThreshold int
	CacheTTL           time.Duration
	Logger             zerolog.Logger
	Tracer             trace.Tracer
}

// Upload 一次上传请求
type Upload struct {
	Filename       string
	Data           []byte
	RequiredSkills string // 逗号分隔，可为空
	RecruiterEmail string // 可为空
}

// Analysis 对一段简历文本的解析结果，可被缓存
type Analysis struct {
	extract.Result
	ConfidenceScore int `json:"confidence_score"`
}

// Meta 解析的附加信息
type Meta struct {
	ParseID         string               `json:"parse_id"`
	Filename        string               `json:"filename,omitempty"`
	ConfidenceScore int                  `json:"confidence_score"`
	SkillsCount     int                  `json:"skills_count"`
	NameStrategy    extract.NameStrategy `json:"name_strategy"`
	Cached          bool                 `json:"cached"`
	JobMatch        *scoring.JobMatch    `json:"job_match"`
}

// ParseResponse 对外返回的解析结果
type ParseResponse struct {
	Success bool              `json:"success"`
	Data    types.ParseRecord `json:"data"`
	Meta    Meta              `json:"meta"`
}

// ResumeService 简历解析服务，可被多个请求并发使用
type ResumeService struct {
	comps Components
	sets  Settings
}

// NewResumeService 创建服务。未设置的组件使用默认实现：
// 内置规则解析器、空标注器、日志通知器、不缓存、不支持任何文档格式。
func NewResumeService(compOpts []ComponentOpt, setOpts []SettingOpt) *ResumeService {
	sets := Settings{
		MaxUploadBytes:     constants.DefaultMaxUploadBytes,
		ShortlistThreshold: constants.DefaultShortlistThreshold,
		CacheTTL:           constants.DefaultAnalysisCacheTTL,
		Logger:             zerolog.Nop(),
		Tracer:             tracing.Tracer(),
	}
	for _, opt := range setOpts {
		opt(&sets)
	}

	comps := Components{}
	for _, opt := range compOpts {
		opt(&comps)
	}
	if comps.Parser == nil {
		comps.Parser = extract.NewParser(extract.DefaultRules())
	}
	if comps.Tagger == nil {
		comps.Tagger = tagger.NullTagger{}
	}
	if comps.Notifier == nil {
		comps.Notifier = notify.NewLogNotifier(sets.Logger)
	}

	return &ResumeService{comps: comps, sets: sets}
}

// Supports 判断文件类型是否支持
func (s *ResumeService) Supports(filename string) bool {
	return s.comps.Extractor != nil && s.comps.Extractor.Supports(filename)
}

// ParseDocument 处理一次上传：校验 → 转文本 → 解析 → 打分 → 入围通知。
// 只有校验失败会返回错误；转文本失败按空文本继续，通知失败记为 email_sent=false。
func (s *ResumeService) ParseDocument(ctx context.Context, up Upload) (*ParseResponse, error) {
	parseID := newParseID()
	log := s.sets.Logger.With().Str("parse_id", parseID).Str("filename", up.Filename).Logger()

	ctx, span := s.sets.Tracer.Start(ctx, "ResumeService.ParseDocument",
		trace.WithAttributes(
			attribute.String("parse.id", parseID),
			attribute.String("document.filename",
				tracing.SafeAttributeValue("document.filename", up.Filename, tracing.DefaultMaxLength)),
			attribute.Int("document.size", len(up.Data)),
		),
	)
	defer span.End()

	if err := s.validate(parseID, up); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		log.Warn().Err(err).Msg("上传校验失败")
		return nil, err
	}

	text := s.extractText(ctx, up, log)

	analysis, cached, err := s.analyze(ctx, text, log)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, newParseError(parseID, err)
	}

	resp := &ParseResponse{
		Success: true,
		Data:    analysis.Record,
		Meta: Meta{
			ParseID:         parseID,
			Filename:        up.Filename,
			ConfidenceScore: analysis.ConfidenceScore,
			SkillsCount:     len(analysis.Record.Skills),
			NameStrategy:    analysis.NameStrategy,
			Cached:          cached,
		},
	}

	resp.Meta.JobMatch = s.matchAndNotify(ctx, parseID, analysis.Record, up, log)
	span.SetAttributes(
		attribute.Int("parse.confidence", analysis.ConfidenceScore),
		attribute.Int("parse.skills_count", resp.Meta.SkillsCount),
		attribute.Bool("parse.cached", cached),
	)
	log.Info().
		Int("confidence", analysis.ConfidenceScore).
		Int("skills", resp.Meta.SkillsCount).
		Str("name_strategy", string(analysis.NameStrategy)).
		Bool("cached", cached).
		Msg("简历解析完成")
	return resp, nil
}

// ParseText 直接解析文本，命令行和批量模式使用
func (s *ResumeService) ParseText(ctx context.Context, text string) (*Analysis, bool, error) {
	ctx, span := s.sets.Tracer.Start(ctx, "ResumeService.ParseText",
		trace.WithAttributes(attribute.Int("text.length", len(text))))
	defer span.End()

	analysis, cached, err := s.analyze(ctx, text, s.sets.Logger)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, false, err
	}
	return analysis, cached, nil
}

func (s *ResumeService) validate(parseID string, up Upload) error {
	if len(up.Data) == 0 {
		return newValidationError(parseID, ErrEmptyUpload, up.Filename)
	}
	if int64(len(up.Data)) > s.sets.MaxUploadBytes {
		return newValidationError(parseID, ErrDocumentTooLarge,
			fmt.Sprintf("%d 字节，上限 %d 字节", len(up.Data), s.sets.MaxUploadBytes))
	}
	if !s.Supports(up.Filename) {
		return newValidationError(parseID, ErrUnsupportedDocument, strings.ToLower(filepath.Ext(up.Filename)))
	}
	return nil
}

func (s *ResumeService) extractText(ctx context.Context, up Upload, log zerolog.Logger) string {
	ctx, span := s.sets.Tracer.Start(ctx, "ResumeService.ExtractText")
	defer span.End()

	text, meta, err := s.comps.Extractor.Extract(ctx, up.Filename, up.Data)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		log.Warn().Err(err).Msg("文档转文本失败，按空文本继续解析")
		return ""
	}
	span.SetAttributes(attribute.Int("text.length", len(text)))
	log.Debug().Interface("meta", meta).Int("text_length", len(text)).Msg("文档转文本完成")
	return text
}

// analyze 查缓存 → 规范化 → 标注 → 解析 → 写缓存
func (s *ResumeService) analyze(ctx context.Context, text string, log zerolog.Logger) (*Analysis, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	key := s.cacheKey(text)
	if s.comps.Cache != nil {
		var cached Analysis
		found, err := s.comps.Cache.GetAnalysis(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("cache_key", key).Msg("读取解析缓存失败")
		} else if found {
			return &cached, true, nil
		}
	}

	doc := extract.Normalize(text)
	spans, tagErr := s.tag(ctx, doc.CleanText, log)

	_, span := s.sets.Tracer.Start(ctx, "ResumeService.CoreParse")
	result := s.comps.Parser.ParseDocument(doc, spans)
	span.SetAttributes(attribute.String("parse.name_strategy", string(result.NameStrategy)))
	span.End()

	analysis := &Analysis{Result: result, ConfidenceScore: scoring.Confidence(result.Record)}

	// 标注失败时的结果来自回退策略，不缓存，下次请求重新标注
	if s.comps.Cache != nil && tagErr == nil {
		if err := s.comps.Cache.SetAnalysis(ctx, key, analysis, s.sets.CacheTTL); err != nil {
			log.Warn().Err(err).Str("cache_key", key).Msg("写入解析缓存失败")
		}
	}
	return analysis, false, nil
}

// cacheKey 文本 MD5 加上解析规则摘要
func (s *ResumeService) cacheKey(text string) string {
	return tagger.TextMD5(text) + ":" + s.comps.Parser.Fingerprint()
}

// tag 对规范化后的文本标注。标注失败不影响解析；若同时返回了部分结果则仍然使用
func (s *ResumeService) tag(ctx context.Context, cleanText string, log zerolog.Logger) ([]types.TaggedSpan, error) {
	ctx, span := s.sets.Tracer.Start(ctx, "ResumeService.Tag")
	defer span.End()

	spans, err := s.comps.Tagger.Tag(ctx, cleanText)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeTagger)
		log.Warn().Err(err).Int("partial_spans", len(spans)).Msg("实体标注失败，使用回退策略")
	}
	span.SetAttributes(attribute.Int("tagger.span_count", len(spans)))
	return spans, err
}

func (s *ResumeService) matchAndNotify(ctx context.Context, parseID string, record types.ParseRecord, up Upload, log zerolog.Logger) *scoring.JobMatch {
	match := scoring.MatchRequirements(up.RequiredSkills, record.Skills, s.sets.ShortlistThreshold)
	if match == nil {
		return nil
	}
	if up.RecruiterEmail != "" {
		email := up.RecruiterEmail
		match.RecruiterEmail = &email
	}
	if !match.IsShortlisted || up.RecruiterEmail == "" {
		return match
	}

	ctx, span := s.sets.Tracer.Start(ctx, "ResumeService.NotifyShortlist",
		trace.WithAttributes(
			attribute.Int("match.score", match.Score),
			attribute.String("notify.recipient_email",
				tracing.SafeAttributeValue("recipient_email", up.RecruiterEmail, tracing.DefaultMaxLength)),
		))
	defer span.End()

	err := s.comps.Notifier.NotifyShortlist(ctx, notify.ShortlistNotice{
		ParseID:        parseID,
		RecruiterEmail: up.RecruiterEmail,
		Candidate:      record.Clone(),
		Score:          match.Score,
		MatchingSkills: append([]string(nil), match.MatchingSkills...),
	})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeNotification)
		log.Error().Err(err).Str("to", tracing.MaskPII(up.RecruiterEmail)).Msg("入围通知发送失败")
		return match
	}
	match.EmailSent = true
	return match
}

// newParseID 生成按时间排序的解析ID
func newParseID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}
