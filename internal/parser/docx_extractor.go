package parser

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/nguyenthenguyen/docx"
)

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	docxTag          = regexp.MustCompile(`<[^>]+>`)
)

// DocxExtractor 读取 word/document.xml 并转为纯文本，每个段落一行
type DocxExtractor struct{}

var _ TextExtractor = (*DocxExtractor)(nil)

func NewDocxExtractor() *DocxExtractor {
	return &DocxExtractor{}
}

func (e *DocxExtractor) ExtractTextFromBytes(_ context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	start := time.Now()
	meta := baseMetadata(uri, start)

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", meta, fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	text := DocxXMLToText(doc.Editable().GetContent())
	meta["text_length"] = len(text)
	meta["processing_duration_ms"] = time.Since(start).Milliseconds()
	return text, meta, nil
}

// DocxXMLToText 将 document.xml 内容转为纯文本
func DocxXMLToText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = docxTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}
