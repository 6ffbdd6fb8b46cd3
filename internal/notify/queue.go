package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/tracing"
)

// ShortlistEvent 发布到队列中的入围事件
type ShortlistEvent struct {
	EventID    string          `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Notice     ShortlistNotice `json:"notice"`
}

// QueueNotifier 把入围通知发布到 RabbitMQ，由 Consumer 异步发送
type QueueNotifier struct {
	publisher  Publisher
	exchange   string
	routingKey string
	now        func() time.Time
}

var _ Notifier = (*QueueNotifier)(nil)

func NewQueueNotifier(publisher Publisher, exchange, routingKey string) *QueueNotifier {
	return &QueueNotifier{
		publisher:  publisher,
		exchange:   exchange,
		routingKey: routingKey,
		now:        time.Now,
	}
}

func (n *QueueNotifier) NotifyShortlist(ctx context.Context, notice ShortlistNotice) error {
	if notice.RecruiterEmail == "" {
		return ErrNoRecipient
	}
	event := ShortlistEvent{
		EventID:    uuid.NewString(),
		OccurredAt: n.now().UTC(),
		Notice:     notice,
	}
	if err := n.publisher.PublishJSON(ctx, n.exchange, n.routingKey, event, true); err != nil {
		return fmt.Errorf("发布入围事件失败: %w", err)
	}
	return nil
}

// Subscriber 队列消费接口，storage.RabbitMQ 实现了该接口
type Subscriber interface {
	StartConsumer(ctx context.Context, queueName string, prefetchCount int, handler func(context.Context, []byte) bool) (<-chan struct{}, error)
}

// Consumer 从通知队列取出入围事件并交给投递通知器
type Consumer struct {
	subscriber Subscriber
	delivery   Notifier
	queue      string
	prefetch   int
	log        zerolog.Logger
	tracer     trace.Tracer

	cancel context.CancelFunc
	done   <-chan struct{}
}

// NewConsumer 创建消费者，prefetch 小于 1 时按 1 处理
func NewConsumer(subscriber Subscriber, delivery Notifier, queue string, prefetch int, log zerolog.Logger) *Consumer {
	if prefetch < 1 {
		prefetch = 1
	}
	return &Consumer{
		subscriber: subscriber,
		delivery:   delivery,
		queue:      queue,
		prefetch:   prefetch,
		log:        log,
		tracer:     otel.Tracer("notify-consumer"),
	}
}

// Start 开始消费，直到 ctx 取消或调用 Stop
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done, err := c.subscriber.StartConsumer(ctx, c.queue, c.prefetch, c.Handle)
	if err != nil {
		cancel()
		return fmt.Errorf("启动通知消费者失败: %w", err)
	}
	c.cancel = cancel
	c.done = done
	c.log.Info().Str("queue", c.queue).Int("prefetch", c.prefetch).Msg("通知消费者已启动")
	return nil
}

// Stop 停止消费并等待当前消息处理完成
func (c *Consumer) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.log.Info().Str("queue", c.queue).Msg("通知消费者已停止")
}

// Handle 处理单条消息，返回 true 表示确认。
// 消息格式错误或缺少收件人时直接确认丢弃，投递失败时拒绝并重新入队。
func (c *Consumer) Handle(ctx context.Context, body []byte) bool {
	var event ShortlistEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.log.Error().Err(err).Msg("入围事件格式错误，丢弃")
		return true
	}

	ctx, span := c.tracer.Start(ctx, "notify.DeliverShortlist",
		trace.WithAttributes(
			attribute.String("event.id", event.EventID),
			attribute.String("parse.id", event.Notice.ParseID),
			attribute.Int("match.score", event.Notice.Score),
		),
	)
	defer span.End()

	err := c.delivery.NotifyShortlist(ctx, event.Notice)
	switch {
	case err == nil:
		c.log.Info().Str("event_id", event.EventID).Str("to", tracing.MaskPII(event.Notice.RecruiterEmail)).Msg("入围通知已投递")
		return true
	case errors.Is(err, ErrNoRecipient):
		c.log.Warn().Str("event_id", event.EventID).Msg("入围事件缺少收件人，丢弃")
		return true
	default:
		tracing.RecordError(span, err, tracing.ErrorTypeNotification)
		c.log.Error().Err(err).Str("event_id", event.EventID).Msg("入围通知投递失败")
		return false
	}
}
