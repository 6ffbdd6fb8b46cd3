package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/ratelimit"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

// HTTPTagger 调用外部 NER 服务
//
// 请求: POST {endpoint} {"text": "..."}
// 响应: {"spans": [{"text": "John Doe", "label": "PERSON"}, ...]}
// 只保留 PERSON 和 SKILL 标签。
type HTTPTagger struct {
	endpoint string
	client   *http.Client
	limiter  *ratelimit.TokenBucket
	tracer   trace.Tracer
}

var _ Tagger = (*HTTPTagger)(nil)

// HTTPOption HTTPTagger 选项
type HTTPOption func(*HTTPTagger)

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTagger) {
		t.client = c
	}
}

// WithRateLimiter 设置限流器
func WithRateLimiter(l *ratelimit.TokenBucket) HTTPOption {
	return func(t *HTTPTagger) {
		t.limiter = l
	}
}

// WithTracer 设置 tracer
func WithTracer(tr trace.Tracer) HTTPOption {
	return func(t *HTTPTagger) {
		t.tracer = tr
	}
}

// NewHTTPTagger 创建 HTTP 标注器，默认超时 5 秒、每分钟 600 次
func NewHTTPTagger(endpoint string, timeout time.Duration, opts ...HTTPOption) *HTTPTagger {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	t := &HTTPTagger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  ratelimit.NewTokenBucket(600, 0),
		tracer:   tracing.Tracer(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StatusError 标注服务返回了非 200 状态码
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("标注服务返回状态码 %d", e.Code)
}

type tagRequest struct {
	Text string `json:"text"`
}

type tagResponse struct {
	Spans []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"spans"`
}

func (t *HTTPTagger) Tag(ctx context.Context, text string) ([]types.TaggedSpan, error) {
	ctx, span := t.tracer.Start(ctx, "tagger.http", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("tagger.text_length", len(text)))

	body, err := json.Marshal(tagRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("序列化标注请求失败: %w", err)
	}

	var spans []types.TaggedSpan
	err = t.limiter.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var callErr error
		spans, callErr = t.call(ctx, body)
		return callErr
	})
	if err != nil {
		recordTagError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("tagger.span_count", len(spans)))
	return spans, nil
}

func (t *HTTPTagger) call(ctx context.Context, body []byte) ([]types.TaggedSpan, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建标注请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求标注服务失败: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("读取标注响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, ratelimit.Retryable(statusErr)
		}
		return nil, statusErr
	}

	var parsed tagResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("解析标注响应失败: %w", err)
	}

	spans := make([]types.TaggedSpan, 0, len(parsed.Spans))
	for _, s := range parsed.Spans {
		var kind types.SpanKind
		switch strings.ToUpper(strings.TrimSpace(s.Label)) {
		case "PERSON", "PER":
			kind = types.SpanPerson
		case "SKILL":
			kind = types.SpanSkill
		default:
			continue
		}
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		spans = append(spans, types.TaggedSpan{Text: s.Text, Kind: kind})
	}
	return spans, nil
}

func recordTagError(span trace.Span, err error) {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		tracing.RecordHTTPError(span, err, se.Code)
	case errors.Is(err, context.DeadlineExceeded):
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
	default:
		tracing.RecordError(span, err, tracing.ErrorTypeTagger)
	}
}
