// Package notify 在候选人入围时通知招聘方。
//
// 支持三种方式：只写日志、直接通过 SMTP 发信、发布到 RabbitMQ 由消费者异步投递。
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
)

// ErrNoRecipient 没有招聘方邮箱
var ErrNoRecipient = errors.New("缺少收件人邮箱")

// ShortlistNotice 一次入围通知的内容
type ShortlistNotice struct {
	ParseID        string            `json:"parse_id"`
	RecruiterEmail string            `json:"recruiter_email"`
	Candidate      types.ParseRecord `json:"candidate"`
	Score          int               `json:"score"`
	MatchingSkills []string          `json:"matching_skills"`
}

// Notifier 入围通知发送器
type Notifier interface {
	NotifyShortlist(ctx context.Context, notice ShortlistNotice) error
}

// LogNotifier 只记录日志，不真正发送，未配置邮件服务时使用
type LogNotifier struct {
	log zerolog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyShortlist(_ context.Context, notice ShortlistNotice) error {
	n.log.Info().
		Str("parse_id", notice.ParseID).
		Str("to", notice.RecruiterEmail).
		Str("candidate", tracing.MaskOptional(notice.Candidate.Name)).
		Str("subject", Subject(notice.Score)).
		Int("score", notice.Score).
		Strs("matching_skills", notice.MatchingSkills).
		Msg("[模拟邮件] 候选人入围通知")
	return nil
}

// Publisher 消息发布接口，storage.RabbitMQ 实现了该接口
type Publisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
}

// Build 按配置创建通知器。queue 模式需要 publisher，否则返回错误。
func Build(cfg config.NotifierConfig, mq config.RabbitMQConfig, publisher Publisher, log zerolog.Logger) (Notifier, error) {
	switch cfg.Mode {
	case "", "log":
		return NewLogNotifier(log), nil
	case "smtp":
		return NewSMTPNotifier(cfg), nil
	case "queue":
		if publisher == nil {
			return nil, fmt.Errorf("通知模式 queue 需要可用的 RabbitMQ")
		}
		return NewQueueNotifier(publisher, mq.NotificationExchange, mq.NotificationKey), nil
	default:
		return nil, fmt.Errorf("不支持的通知模式: %s", cfg.Mode)
	}
}

// BuildDelivery 创建队列消费者实际使用的投递方式
func BuildDelivery(cfg config.NotifierConfig, log zerolog.Logger) Notifier {
	if cfg.Delivery == "smtp" {
		return NewSMTPNotifier(cfg)
	}
	return NewLogNotifier(log)
}
