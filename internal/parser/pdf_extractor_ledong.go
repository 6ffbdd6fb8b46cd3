package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// LedongPDFExtractor 纯 Go 的 PDF 提取器，不依赖外部服务
type LedongPDFExtractor struct{}

var _ TextExtractor = LedongPDFExtractor{}

// ExtractTextFromBytes 按页、按行读取文本，页之间以换页符分隔。
// 损坏的文件可能让底层库 panic，这里统一转换为错误返回。
func (LedongPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (text string, meta map[string]interface{}, err error) {
	start := time.Now()
	meta = baseMetadata(uri, start)
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read pdf %s: %v", uri, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", meta, fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", meta, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if i > 1 {
			b.WriteByte('\f')
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			plain, _ := page.GetPlainText(nil)
			b.WriteString(plain)
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
			}
			b.WriteByte('\n')
		}
	}

	text = b.String()
	meta["page_count"] = pages
	meta["text_length"] = len(text)
	meta["processing_duration_ms"] = time.Since(start).Milliseconds()
	return text, meta, nil
}
