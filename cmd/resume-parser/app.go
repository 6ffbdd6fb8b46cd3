package main

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/extract"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/notify"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tagger"
	"resume-parser-go/internal/tracing"
)

// application 一次运行所需的全部组件
type application struct {
	cfg       *config.Config
	storage   *storage.Storage
	extractor *parser.DocumentExtractor
	service   *processor.ResumeService

	shutdownTracing func(context.Context) error
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if err := initLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) error {
	err := logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		FilePath:     cfg.Logger.FilePath,
		Service:      serviceName,
	})
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	// Hertz 的日志也输出到同一个 zerolog 实例
	hlog.SetLogger(hertzadapter.From(logger.Logger))
	if cfg.Logger.Level == "debug" {
		hlog.SetLevel(hlog.LevelDebug)
	} else {
		hlog.SetLevel(hlog.LevelInfo)
	}
	return nil
}

// newApplication 按配置组装所有组件
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	app := &application{cfg: cfg}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitProvider(ctx, tracing.ProviderConfig{
			ServiceName:    constants.ServiceName,
			ServiceVersion: constants.ServiceVersion,
			Endpoint:       cfg.Tracing.OTLPEndpoint,
			Insecure:       cfg.Tracing.Insecure,
			SampleRatio:    cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化追踪失败: %w", err)
		}
		app.shutdownTracing = shutdown
		logger.Info().Str("endpoint", cfg.Tracing.OTLPEndpoint).Msg("OpenTelemetry 追踪已启用")
	}

	st, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}
	app.storage = st

	vocabulary, err := cfg.LoadVocabulary()
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	rules := extract.DefaultRules().WithVocabulary(vocabulary)
	coreParser := extract.NewParser(rules, extract.WithNameFallback(extract.NameFallback(cfg.Parser.NameFallback)))

	pdf, err := parser.BuildPDFExtractor(ctx, cfg.Extraction)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.extractor = parser.NewDocumentExtractor(pdf)
	logger.Info().Str("pdf_extractor", cfg.Extraction.PDFExtractor).Strs("extensions", app.extractor.Extensions()).Msg("文档提取器初始化成功")

	var spanCache tagger.SpanCache
	if st.Redis != nil {
		spanCache = st.Redis
	}
	t, err := tagger.Build(cfg.Tagger, rules.Vocabulary, spanCache)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	logger.Info().Str("mode", cfg.Tagger.Mode).Msg("实体标注器初始化成功")

	notifier, err := app.buildNotifier()
	if err != nil {
		app.Close(ctx)
		return nil, err
	}

	compOpts := []processor.ComponentOpt{
		processor.WithExtractor(app.extractor),
		processor.WithParser(coreParser),
		processor.WithTagger(t),
		processor.WithNotifier(notifier),
	}
	if cfg.Cache.Enabled && st.Redis != nil {
		compOpts = append(compOpts, processor.WithAnalysisCache(st.Redis))
	}
	app.service = processor.NewResumeService(compOpts, []processor.SettingOpt{
		processor.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		processor.WithShortlistThreshold(cfg.Scoring.ShortlistThreshold),
		processor.WithCacheTTL(config.GetDuration(cfg.Cache.TTL, constants.DefaultAnalysisCacheTTL)),
		processor.WithLogger(logger.Component("processor")),
		processor.WithTracer(tracing.Tracer()),
	})
	return app, nil
}

func (a *application) buildNotifier() (notify.Notifier, error) {
	log := logger.Component("notify")
	var publisher notify.Publisher
	if a.cfg.Notifier.Mode == "queue" {
		if a.storage.RabbitMQ == nil {
			return nil, fmt.Errorf("通知模式 queue 需要启用 RabbitMQ")
		}
		mq := a.cfg.RabbitMQ
		if err := a.storage.RabbitMQ.SetupTopology(mq.NotificationExchange, mq.NotificationQueue, mq.NotificationKey); err != nil {
			return nil, fmt.Errorf("声明通知队列失败: %w", err)
		}
		publisher = a.storage.RabbitMQ
	}
	return notify.Build(a.cfg.Notifier, a.cfg.RabbitMQ, publisher, log)
}

// Close 释放连接并刷新追踪数据
func (a *application) Close(ctx context.Context) {
	if a.storage != nil {
		a.storage.Close()
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			logger.Warn().Err(err).Msg("关闭追踪导出器失败")
		}
	}
	_ = logger.Close()
}
