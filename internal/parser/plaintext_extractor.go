package parser

import (
	"bytes"
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainTextExtractor 处理 .txt，去掉 BOM 并替换非法 UTF-8 字节
type PlainTextExtractor struct{}

var _ TextExtractor = PlainTextExtractor{}

func (PlainTextExtractor) ExtractTextFromBytes(_ context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	meta := baseMetadata(uri, time.Now())
	data = bytes.TrimPrefix(data, utf8BOM)

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
		meta["invalid_utf8"] = true
	}
	meta["text_length"] = len(text)
	return text, meta, nil
}
