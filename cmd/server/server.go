package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	otelapi "go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"Lifeline/config"
	"Lifeline/internal/middleware"
	"Lifeline/internal/mirror"
	"Lifeline/internal/queue"
	"Lifeline/internal/router"
	"Lifeline/internal/schedule"
	"Lifeline/internal/service"
	"Lifeline/pkg/logger"
	"Lifeline/pkg/metrics"
	"Lifeline/pkg/otel"
	"Lifeline/pkg/snowflake"
	"Lifeline/storage"
	"Lifeline/storage/database"
)

const serviceVersion = "0.1.0"

func main() {
	// 日志部分
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 存储层全部是镜像/扇出用途，挂了只降级不拦路：
	// 注册表在内存里，打卡和巡检不依赖任何外部件
	if err := storage.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize storage, running degraded in-memory mode", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// 链路追踪 + 指标
	if config.Cfg.TracingEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: serviceVersion,
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.TracingEndpoint,
			SampleRatio:    config.Cfg.TracingSampler,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()

			if err := metrics.InitMetrics(); err != nil {
				logger.Logger.Warn("Failed to initialize safety metrics", zap.Error(err))
			}
			if err := middleware.InitMetrics(otelapi.Meter("hertz-server")); err != nil {
				logger.Logger.Warn("Failed to initialize HTTP metrics", zap.Error(err))
			}
		}
	}

	// 广播走 MQ + redis，单进程跑时退化为 no-op
	service.SetBroadcaster(queue.NewBroadcaster())

	// 用镜像库预热注册表，重启不丢参与者
	if database.Ready() {
		rehydrateRegistry(ctx)
	}

	// 进程内巡检循环
	go schedule.GetScheduler().Run(ctx)

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	h := server.Default(server.WithHostPorts(addr))

	router.Register(h)

	// 优雅关闭：在单独的 goroutine 中监听关闭信号并调用 Shutdown
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}

func rehydrateRegistry(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	participants, err := mirror.LoadParticipants(loadCtx)
	if err != nil {
		logger.Logger.Warn("Failed to load participants from mirror", zap.Error(err))
		return
	}

	seeded := service.Registry().Seed(participants)
	logger.Logger.Info("Registry rehydrated from mirror",
		zap.Int("loaded", len(participants)),
		zap.Int("seeded", seeded),
	)
}
