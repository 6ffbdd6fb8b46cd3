package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/tracing"
)

func TestNewStorageSkipsDisabledComponents(t *testing.T) {
	s, err := NewStorage(context.Background(), config.DefaultConfig())
	require.NoError(t, err)

	assert.Nil(t, s.Redis)
	assert.Nil(t, s.RabbitMQ)
	assert.Nil(t, s.MinIO)
	s.Close()
}

func TestNewStorageRequiresConfig(t *testing.T) {
	_, err := NewStorage(context.Background(), nil)
	assert.Error(t, err)
}

func TestAdaptersValidateConfig(t *testing.T) {
	_, err := NewRedisAdapter(nil)
	assert.Error(t, err)
	_, err = NewRedisAdapter(&config.RedisConfig{})
	assert.Error(t, err)

	_, err = NewRabbitMQ(&config.RabbitMQConfig{})
	assert.Error(t, err)

	_, err = NewMinIO(context.Background(), &config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("cv/Jane.PDF"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("report.xlsx"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("a.txt"))
	assert.Equal(t, "application/octet-stream", ContentType("photo.png"))
}

func TestRedisErrorsRecordedOnCallerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("test").Start(context.Background(), "cache")

	r := &Redis{Client: redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})}
	defer r.Close()

	var v struct{}
	_, err := r.GetAnalysis(ctx, strings.Repeat("a", 150), &v)
	require.Error(t, err)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "redis", attrs["error.type"])
	assert.True(t, strings.HasPrefix(attrs["redis.key"], "app:parse:analysis:"))
	assert.LessOrEqual(t, len(attrs["redis.key"]), tracing.MaxRedisLength)
}
