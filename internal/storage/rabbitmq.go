package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/tracing"
)

// MessageQueue 消息队列接口
type MessageQueue interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
	EnsureExchange(exchangeName, exchangeType string, durable bool) error
	EnsureQueue(queueName string, durable bool) error
	BindQueue(queueName, exchangeName, routingKey string) error
	Close() error
}

var _ MessageQueue = (*RabbitMQ)(nil)

// RabbitMQ 入围通知使用的消息队列
type RabbitMQ struct {
	conn     *amqp.Connection
	channels chan *amqp.Channel // 发布用通道池
	cfg      *config.RabbitMQConfig
	log      zerolog.Logger

	mu       sync.Mutex
	declared map[string]bool // 已声明的 exchange/queue/binding
}

// NewRabbitMQ 连接 RabbitMQ 并预先验证可以打开通道
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}

	poolSize := cfg.ChannelPoolSize
	if poolSize <= 0 {
		poolSize = 4
	}
	mq := &RabbitMQ{
		conn:     conn,
		channels: make(chan *amqp.Channel, poolSize),
		cfg:      cfg,
		log:      logger.Component("rabbitmq"),
		declared: make(map[string]bool),
	}

	ch, err := mq.getChannel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	mq.putChannel(ch)
	return mq, nil
}

func (r *RabbitMQ) getChannel() (*amqp.Channel, error) {
	for {
		select {
		case ch := <-r.channels:
			if ch.IsClosed() {
				continue
			}
			return ch, nil
		default:
			ch, err := r.conn.Channel()
			if err != nil {
				return nil, fmt.Errorf("创建RabbitMQ通道失败: %w", err)
			}
			return ch, nil
		}
	}
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch == nil || ch.IsClosed() {
		return
	}
	select {
	case r.channels <- ch:
	default:
		_ = ch.Close()
	}
}

// Close 关闭池中的通道和连接
func (r *RabbitMQ) Close() error {
	for {
		select {
		case ch := <-r.channels:
			_ = ch.Close()
		default:
			return r.conn.Close()
		}
	}
}

func (r *RabbitMQ) declareOnce(key string, declare func(ch *amqp.Channel) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.declared[key] {
		return nil
	}

	ch, err := r.getChannel()
	if err != nil {
		return err
	}
	defer r.putChannel(ch)

	if err := declare(ch); err != nil {
		return err
	}
	r.declared[key] = true
	return nil
}

// EnsureExchange 声明 exchange，同一进程内只声明一次
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	return r.declareOnce("exchange:"+exchangeName, func(ch *amqp.Channel) error {
		if err := ch.ExchangeDeclare(exchangeName, exchangeType, durable, false, false, false, nil); err != nil {
			return fmt.Errorf("声明exchange失败: %w", err)
		}
		r.log.Debug().Str("exchange", exchangeName).Msg("已声明exchange")
		return nil
	})
}

// EnsureQueue 声明队列
func (r *RabbitMQ) EnsureQueue(queueName string, durable bool) error {
	if queueName == "" {
		return fmt.Errorf("队列名称不能为空")
	}
	return r.declareOnce("queue:"+queueName, func(ch *amqp.Channel) error {
		if _, err := ch.QueueDeclare(queueName, durable, false, false, false, nil); err != nil {
			return fmt.Errorf("声明队列失败: %w", err)
		}
		r.log.Debug().Str("queue", queueName).Msg("已声明队列")
		return nil
	})
}

// BindQueue 绑定队列到 exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	key := fmt.Sprintf("binding:%s:%s:%s", exchangeName, queueName, routingKey)
	return r.declareOnce(key, func(ch *amqp.Channel) error {
		if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
			return fmt.Errorf("绑定队列到exchange失败: %w", err)
		}
		return nil
	})
}

// SetupTopology 声明 direct exchange、持久队列并绑定
func (r *RabbitMQ) SetupTopology(exchangeName, queueName, routingKey string) error {
	if err := r.EnsureExchange(exchangeName, amqp.ExchangeDirect, true); err != nil {
		return err
	}
	if err := r.EnsureQueue(queueName, true); err != nil {
		return err
	}
	return r.BindQueue(queueName, exchangeName, routingKey)
}

// PublishMessage 发布一条 JSON 消息
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	ch, err := r.getChannel()
	if err != nil {
		return err
	}
	defer r.putChannel(ch)

	deliveryMode := amqp.Transient
	if persistent {
		deliveryMode = amqp.Persistent
	}
	err = ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		DeliveryMode: deliveryMode,
		ContentType:  "application/json",
		Body:         message,
		Timestamp:    time.Now(),
	})
	if err != nil {
		err = fmt.Errorf("发布消息失败: %w", err)
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeRabbitMQ,
			attribute.String("messaging.destination", exchangeName),
			attribute.String("messaging.routing_key", routingKey))
		return err
	}
	return nil
}

// PublishJSON 序列化后发布
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}
	return r.PublishMessage(ctx, exchangeName, routingKey, body, persistent)
}

// StartConsumer 在独立通道上消费队列，直到 ctx 结束或通道关闭。
// handler 返回 true 时确认消息，否则拒绝并重新入队。
// 返回的 channel 在消费协程退出后关闭。
func (r *RabbitMQ) StartConsumer(ctx context.Context, queueName string, prefetchCount int, handler func(context.Context, []byte) bool) (<-chan struct{}, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("创建消费通道失败: %w", err)
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("设置QoS失败: %w", err)
	}
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("注册消费者失败: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ch.Close()
		r.log.Info().Str("queue", queueName).Int("prefetch", prefetchCount).Msg("RabbitMQ消费者已启动")

		for {
			select {
			case <-ctx.Done():
				r.log.Info().Str("queue", queueName).Msg("RabbitMQ消费者已停止")
				return
			case d, ok := <-deliveries:
				if !ok {
					r.log.Warn().Str("queue", queueName).Msg("RabbitMQ投递通道已关闭")
					return
				}
				if handler(ctx, d.Body) {
					if err := d.Ack(false); err != nil {
						r.log.Error().Err(err).Msg("确认消息失败")
					}
				} else if err := d.Nack(false, true); err != nil {
					r.log.Error().Err(err).Msg("拒绝消息失败")
				}
			}
		}
	}()
	return done, nil
}
