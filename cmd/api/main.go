package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appreview "github.com/xiebiao/bookcatalog/internal/application/review"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// main 主程序入口
//
// 启动顺序：配置 → 日志 → 指标 → 追踪 → Wire组装 → HTTP/gRPC/MQ消费者
// 关闭顺序相反，收到SIGINT/SIGTERM后在shutdownTimeout内完成
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.New(cfg.Log.Logger())
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("服务异常退出", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 指标与追踪
	metrics.InitMetrics()
	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				zl.Warn("关闭链路追踪失败", zap.Error(err))
			}
		}()
	}

	// 4. 依赖注入
	app, cleanup, err := InitializeApp(cfg, zl)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	defer cleanup()

	errCh := make(chan error, 3)

	// 5. HTTP服务
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		zl.Info("HTTP服务启动", zap.String("addr", server.Addr), zap.String("mode", cfg.Server.Mode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP服务: %w", err)
		}
	}()

	// 6. gRPC健康检查
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("监听gRPC端口失败: %w", err)
		}
		go func() {
			if err := app.Health.Serve(ctx, lis); err != nil {
				errCh <- fmt.Errorf("gRPC服务: %w", err)
			}
		}()
		defer app.Health.Stop()
	}

	// 7. 消费其他实例的评论事件
	if cfg.MQ.Enabled {
		consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", cfg.MQ.Queue, []string{appreview.RoutingPattern}, zl)
		if err != nil {
			return fmt.Errorf("创建评论事件消费者失败: %w", err)
		}
		defer func() { _ = consumer.Close() }()
		go func() {
			if err := consumer.Consume(ctx, app.Trigger.ApplyRemote); err != nil && ctx.Err() == nil {
				errCh <- fmt.Errorf("评论事件消费者: %w", err)
			}
		}()
	}

	// 8. 等待退出信号
	select {
	case <-ctx.Done():
		zl.Info("收到退出信号，开始优雅关闭")
	case err := <-errCh:
		zl.Error("服务组件失败，开始关闭", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭HTTP服务失败: %w", err)
	}

	zl.Info("服务已停止", zap.Int("pid", os.Getpid()))
	return nil
}
