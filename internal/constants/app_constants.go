package constants

import "time"

const (
	// ServiceName 服务名，用于追踪与日志
	ServiceName = "resume-parser"
	// ServiceVersion 服务版本
	ServiceVersion = "1.0.0"

	// DefaultShortlistThreshold 入围分数线 (百分比, 含)
	DefaultShortlistThreshold = 50
	// DefaultMaxUploadBytes 单个上传文件大小上限
	DefaultMaxUploadBytes = 10 << 20

	// DefaultSpanCacheTTL 标注结果缓存时长
	DefaultSpanCacheTTL = 24 * time.Hour
	// DefaultAnalysisCacheTTL 解析结果缓存时长
	DefaultAnalysisCacheTTL = 6 * time.Hour

	// NotificationExchange 入围通知交换机
	NotificationExchange = "resume.notifications"
	// NotificationQueue 入围通知队列
	NotificationQueue = "resume.shortlist.email"
	// NotificationRoutingKey 入围通知路由键
	NotificationRoutingKey = "shortlist.email"
)
