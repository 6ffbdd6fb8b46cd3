package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"resume-parser-go/internal/config"
)

// ErrUnsupportedFormat 文件扩展名没有对应的提取器
var ErrUnsupportedFormat = errors.New("unsupported document format")

// TextExtractor 将一种格式的文档字节转换为纯文本
type TextExtractor interface {
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

// DocumentExtractor 按扩展名分派到具体的提取器
type DocumentExtractor struct {
	byExt map[string]TextExtractor
}

// NewDocumentExtractor 注册 .pdf (使用给定的 PDF 提取器)、.docx 和 .txt
func NewDocumentExtractor(pdf TextExtractor) *DocumentExtractor {
	d := &DocumentExtractor{byExt: make(map[string]TextExtractor)}
	d.Register(".pdf", pdf)
	d.Register(".docx", NewDocxExtractor())
	d.Register(".txt", PlainTextExtractor{})
	return d
}

// Register 为扩展名注册提取器，nil 表示移除
func (d *DocumentExtractor) Register(ext string, e TextExtractor) {
	ext = strings.ToLower(ext)
	if e == nil {
		delete(d.byExt, ext)
		return
	}
	d.byExt[ext] = e
}

// Supports 判断文件名是否有对应的提取器
func (d *DocumentExtractor) Supports(filename string) bool {
	_, ok := d.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions 返回已注册的扩展名，按字母序
func (d *DocumentExtractor) Extensions() []string {
	out := make([]string, 0, len(d.byExt))
	for ext := range d.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract 提取文档文本
func (d *DocumentExtractor) Extract(ctx context.Context, filename string, data []byte) (string, map[string]interface{}, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := d.byExt[ext]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return e.ExtractTextFromBytes(ctx, data, filename)
}

// BuildPDFExtractor 按配置创建 PDF 提取器
func BuildPDFExtractor(ctx context.Context, cfg config.ExtractionConfig) (TextExtractor, error) {
	switch cfg.PDFExtractor {
	case "", "eino":
		return NewEinoPDFTextExtractor(ctx)
	case "tika":
		return NewTikaPDFExtractor(cfg.Tika.ServerURL,
			WithTimeout(time.Duration(cfg.Tika.Timeout)*time.Second)), nil
	case "ledongthuc":
		return LedongPDFExtractor{}, nil
	default:
		return nil, fmt.Errorf("不支持的 PDF 提取器: %s", cfg.PDFExtractor)
	}
}

func baseMetadata(uri string, start time.Time) map[string]interface{} {
	return map[string]interface{}{
		"source_file_path": uri,
		"extraction_time":  start.Format(time.RFC3339),
	}
}
