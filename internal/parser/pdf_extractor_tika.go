package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TikaPDFExtractor 调用 Apache Tika 服务器提取文本
type TikaPDFExtractor struct {
	ServerURL string
	Client    *http.Client
}

var _ TextExtractor = (*TikaPDFExtractor)(nil)

// TikaOption 配置选项
type TikaOption func(*TikaPDFExtractor)

// WithTimeout 配置 HTTP 客户端超时，非正值忽略
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		if timeout > 0 {
			e.Client.Timeout = timeout
		}
	}
}

// NewTikaPDFExtractor 创建 Tika 提取器，默认超时 60 秒
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) *TikaPDFExtractor {
	e := &TikaPDFExtractor{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Client:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractTextFromBytes PUT /tika，以纯文本返回
func (e *TikaPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	start := time.Now()
	meta := baseMetadata(uri, start)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", meta, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "text/plain")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", meta, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", meta, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", meta, fmt.Errorf("读取Tika响应失败: %w", err)
	}

	text := string(body)
	meta["text_length"] = len(text)
	meta["processing_duration_ms"] = time.Since(start).Milliseconds()
	return text, meta, nil
}
