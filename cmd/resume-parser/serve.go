package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/cobra"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/notify"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var serveAddress string

func init() {
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "监听地址，覆盖配置中的 server.address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	application, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close(context.Background())

	consumer, err := startNotificationConsumer(ctx, application)
	if err != nil {
		return err
	}

	opts := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// multipart 表单还有边界和其他字段的开销
		server.WithMaxRequestBodySize(int(cfg.MaxUploadBytes()) + 1<<20),
	}
	var tracerCfg *hertztracing.Config
	if cfg.Tracing.Enabled {
		tracer, tc := hertztracing.NewServerTracer()
		opts = append(opts, tracer)
		tracerCfg = tc
	}
	h := server.New(opts...)
	if tracerCfg != nil {
		h.Use(hertztracing.ServerMiddleware(tracerCfg))
	}
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		hlog.CtxInfof(c, "%s %s -> %d (%s)", ctx.Method(), ctx.Path(), ctx.Response.StatusCode(), time.Since(start))
	})

	resumeHandler := handler.NewResumeHandler(application.service, cfg.MaxUploadBytes(), logger.Component("api"))
	router.RegisterRoutes(h.Engine, resumeHandler, cfg.Server.APIKeys)
	hlog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		hlog.Info("接收到终止信号，正在优雅退出...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP 服务器异常退出: %w", err)
		}
	}

	if consumer != nil {
		consumer.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭失败: %w", err)
	}
	hlog.Info("优雅退出完成")
	return nil
}

// startNotificationConsumer queue 模式下在服务进程内消费入围通知
func startNotificationConsumer(ctx context.Context, a *application) (*notify.Consumer, error) {
	if a.cfg.Notifier.Mode != "queue" || a.storage.RabbitMQ == nil {
		return nil, nil
	}
	log := logger.Component("notify.consumer")
	consumer := notify.NewConsumer(
		a.storage.RabbitMQ,
		notify.BuildDelivery(a.cfg.Notifier, log),
		a.cfg.RabbitMQ.NotificationQueue,
		a.cfg.RabbitMQ.PrefetchCount,
		log,
	)
	if err := consumer.Start(ctx); err != nil {
		return nil, err
	}
	return consumer, nil
}
