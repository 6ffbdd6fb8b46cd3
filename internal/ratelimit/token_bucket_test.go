package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestAllowRefills(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	tb := NewTokenBucket(60, 2, WithClock(clock.Now))

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "桶已空")

	clock.Advance(time.Second)
	assert.True(t, tb.Allow(), "60 QPM 每秒补充一个令牌")
	assert.False(t, tb.Allow())

	clock.Advance(time.Hour)
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "令牌数不超过容量")
}

func TestWaitHonoursContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryWithBackoff(t *testing.T) {
	tb := NewTokenBucket(6000, 10, WithRetryPolicy(time.Millisecond, 2))

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("status 503"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = tb.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("bad request")
	})
	assert.EqualError(t, err, "bad request")
	assert.Equal(t, 1, calls, "不可重试的错误不应重试")

	calls = 0
	err = tb.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("dial: %w", Retryable(errors.New("connection refused")))
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls, "最多执行 1+maxRetries 次")
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsRetryable(Retryable(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("invalid json")))
	assert.Nil(t, Retryable(nil))
}
