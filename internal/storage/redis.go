package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

// ErrNotFound 键不存在
var ErrNotFound = redis.Nil

// Redis 封装 go-redis 客户端，提供标注结果和解析结果的 JSON 缓存
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建 Redis 客户端，挂载 OpenTelemetry 钩子并检查连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("添加Redis追踪钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败 (%s): %w", cfg.Address, err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.Client.Close()
}

// GetJSON 读取并反序列化；键不存在时返回 false 和 nil 错误
func (r *Redis) GetJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		err = fmt.Errorf("读取Redis键失败: %w", err)
		recordRedisError(ctx, err, key)
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		err = fmt.Errorf("反序列化Redis值失败: %w", err)
		recordRedisError(ctx, err, key)
		return false, err
	}
	return true, nil
}

// SetJSON 序列化后写入，ttl 为0表示不过期
func (r *Redis) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化Redis值失败: %w", err)
	}
	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		err = fmt.Errorf("写入Redis键失败: %w", err)
		recordRedisError(ctx, err, key)
		return err
	}
	return nil
}

// recordRedisError 将错误记录到调用方的 span 上
func recordRedisError(ctx context.Context, err error, key string) {
	tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeRedis,
		attribute.String("redis.key", tracing.SafeRedisKey(key)))
}

// GetSpans 读取文本对应的标注缓存
func (r *Redis) GetSpans(ctx context.Context, textMD5 string) ([]types.TaggedSpan, bool, error) {
	var spans []types.TaggedSpan
	found, err := r.GetJSON(ctx, constants.TaggerSpansKey(textMD5), &spans)
	return spans, found, err
}

// SetSpans 缓存标注结果，空结果同样缓存以避免重复请求
func (r *Redis) SetSpans(ctx context.Context, textMD5 string, spans []types.TaggedSpan, ttl time.Duration) error {
	if spans == nil {
		spans = []types.TaggedSpan{}
	}
	return r.SetJSON(ctx, constants.TaggerSpansKey(textMD5), spans, ttl)
}

// GetAnalysis 读取解析结果缓存
func (r *Redis) GetAnalysis(ctx context.Context, key string, v interface{}) (bool, error) {
	return r.GetJSON(ctx, constants.ParseAnalysisKey(key), v)
}

// SetAnalysis 写入解析结果缓存
func (r *Redis) SetAnalysis(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	return r.SetJSON(ctx, constants.ParseAnalysisKey(key), v, ttl)
}
