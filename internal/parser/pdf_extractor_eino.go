package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"

	"resume-parser-go/internal/logger"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取文本，默认实现
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	timeout time.Duration
	log     zerolog.Logger
}

var _ TextExtractor = (*EinoPDFTextExtractor)(nil)

// EinoPDFOption 配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoTimeout 单个文档的解析超时
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.timeout = d
	}
}

// NewEinoPDFTextExtractor 创建提取器。按页拆分后以换页符拼接，行结构保持不变。
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	e := &EinoPDFTextExtractor{
		parser:  p,
		timeout: 30 * time.Second,
		log:     logger.Component("pdf.eino"),
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// ExtractTextFromBytes 从字节数组提取文本
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	start := time.Now()
	meta := baseMetadata(uri, start)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(uri))
	if err != nil {
		return "", meta, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}
	if len(docs) == 0 {
		return "", meta, fmt.Errorf("eino PDF parser returned no documents for URI %s", uri)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.Content)
	}
	text := strings.Join(pages, "\f")

	meta["page_count"] = len(docs)
	meta["text_length"] = len(text)
	meta["processing_duration_ms"] = time.Since(start).Milliseconds()
	e.log.Debug().Str("uri", uri).Int("pages", len(docs)).Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).Msg("PDF提取完成")
	return text, meta, nil
}
