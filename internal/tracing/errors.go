package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 错误类别，写入 span 的 error.type 属性
type ErrorType string

const (
	ErrorTypeHTTP         ErrorType = "http"
	ErrorTypeRedis        ErrorType = "redis"
	ErrorTypeRabbitMQ     ErrorType = "rabbitmq"
	ErrorTypeObjectStore  ErrorType = "object_store"
	ErrorTypeExtraction   ErrorType = "extraction"
	ErrorTypeTagger       ErrorType = "tagger"
	ErrorTypeNotification ErrorType = "notification"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeTimeout      ErrorType = "timeout"
)

// RecordError 记录错误并将 span 置为错误状态，可附带额外属性
func RecordError(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", TruncateString(err.Error(), DefaultMaxLength)),
	)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	span.SetStatus(codes.Error, err.Error())
}

// RecordHTTPError 记录外部 HTTP 调用失败，按状态码区分客户端/服务端错误
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	if span == nil || err == nil {
		return
	}

	category := "unknown"
	switch {
	case statusCode >= 400 && statusCode < 500:
		category = "client_error"
	case statusCode >= 500:
		category = "server_error"
	}

	RecordError(span, err, ErrorTypeHTTP,
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", category),
	)
}
