package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// TokenBucket 令牌桶限流器，用于外部标注服务等按 QPM 计费的调用
type TokenBucket struct {
	mu         sync.Mutex
	rate       float64 // 每秒生成的令牌数
	capacity   float64
	tokens     float64
	lastRefill time.Time
	now        func() time.Time

	retryWait  time.Duration
	maxRetries int
}

// Option 令牌桶选项
type Option func(*TokenBucket)

// WithRetryPolicy 设置首次重试等待时间和最大重试次数，等待时间按 2 的幂增长
func WithRetryPolicy(wait time.Duration, maxRetries int) Option {
	return func(tb *TokenBucket) {
		if wait > 0 {
			tb.retryWait = wait
		}
		if maxRetries >= 0 {
			tb.maxRetries = maxRetries
		}
	}
}

// WithClock 替换时间源，测试中使用
func WithClock(now func() time.Time) Option {
	return func(tb *TokenBucket) {
		tb.now = now
		tb.lastRefill = now()
	}
}

// NewTokenBucket 创建限流器。capacity 不大于0时取 qpm 的一半，桶初始为满。
func NewTokenBucket(qpm int, capacity int, opts ...Option) *TokenBucket {
	if qpm <= 0 {
		qpm = 60
	}
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}

	tb := &TokenBucket{
		rate:       float64(qpm) / 60.0,
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		now:        time.Now,
		retryWait:  time.Second,
		maxRetries: 3,
	}
	tb.lastRefill = tb.now()
	for _, opt := range opts {
		opt(tb)
	}
	return tb
}

func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 非阻塞地尝试获取一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait 阻塞直到获得令牌或 ctx 结束
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill()
		if tb.tokens >= 1.0 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		wait := time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryWithBackoff 每次调用前获取令牌，可重试的错误按指数退避重试
func (tb *TokenBucket) RetryWithBackoff(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= tb.maxRetries; attempt++ {
		if err = tb.Wait(ctx); err != nil {
			return err
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt == tb.maxRetries {
			return err
		}

		timer := time.NewTimer(tb.retryWait * time.Duration(1<<uint(attempt)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// RetryableError 显式标记可重试的错误，例如 5xx 或 429 响应
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable 将错误包装为可重试错误
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

var retryableMessages = []string{
	"timeout",
	"connection reset",
	"connection refused",
	"EOF",
	"no such host",
	"429",
	"rate limit",
}

// IsRetryable 判断错误是否值得重试；ctx 取消不重试
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var re *RetryableError
	if errors.As(err, &re) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, s := range retryableMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
