package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
)

// Storage 聚合可选的外部依赖，未启用或初始化失败的组件为 nil
type Storage struct {
	Redis    *Redis
	RabbitMQ *RabbitMQ
	MinIO    *MinIO
}

// NewStorage 按配置初始化各组件。单个组件失败只记录警告，
// 由调用方根据功能需要决定是否继续。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}
	var initErrors []string
	var err error

	if cfg.Redis.Enabled {
		if s.Redis, err = NewRedisAdapter(&cfg.Redis); err != nil {
			logger.Warn().Err(err).Msg("初始化Redis失败，缓存将被禁用")
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		} else {
			logger.Info().Str("address", cfg.Redis.Address).Msg("Redis客户端初始化成功")
		}
	}

	if cfg.RabbitMQ.Enabled {
		if s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ); err != nil {
			logger.Warn().Err(err).Msg("初始化RabbitMQ失败")
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		} else {
			logger.Info().Msg("RabbitMQ连接成功")
		}
	}

	if cfg.MinIO.Enabled {
		if s.MinIO, err = NewMinIO(ctx, &cfg.MinIO); err != nil {
			logger.Warn().Err(err).Msg("初始化MinIO失败")
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		}
	}

	if len(initErrors) > 0 {
		logger.Warn().Str("errors", strings.Join(initErrors, "; ")).Msg("部分存储组件初始化失败")
	}
	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
