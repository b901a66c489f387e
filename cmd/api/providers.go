package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appreview "github.com/xiebiao/bookcatalog/internal/application/review"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/cache"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/redis"
	grpcapi "github.com/xiebiao/bookcatalog/internal/interface/grpc"
	"github.com/xiebiao/bookcatalog/pkg/circuitbreaker"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Router  *gin.Engine
	Health  *grpcapi.HealthServer
	Trigger *appreview.Trigger
}

// NewApp 聚合顶层组件(Wire的最终产物)
func NewApp(cfg *config.Config, logger *zap.Logger, router *gin.Engine, health *grpcapi.HealthServer, trigger *appreview.Trigger) *App {
	return &App{
		Config:  cfg,
		Logger:  logger,
		Router:  router,
		Health:  health,
		Trigger: trigger,
	}
}

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// 教学说明：
// 这些Provider需要根据配置做选择或返回cleanup，Wire无法直接用构造函数

// provideDB 创建数据库连接，cleanup关闭连接池
func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideCacheBackend 按cache.driver选择缓存后端
// 教学要点：
// 1. redis：多实例共享缓存，评论变更后任意实例淘汰即对所有实例生效
// 2. memory：每个实例独立缓存，需要开启mq广播才能让其他实例淘汰
func provideCacheBackend(cfg *config.Config, logger *zap.Logger) (cache.Backend, func(), error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		if !cfg.MQ.Enabled {
			logger.Warn("使用进程内缓存且未开启mq广播，多实例部署时详情缓存会在其他实例上滞后")
		}
		return cache.NewMemoryBackend(), func() {}, nil
	case config.CacheDriverRedis:
		client, err := redis.NewClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewCacheBackend(client, cfg.Cache.Prefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("不支持的缓存后端: %q", cfg.Cache.Driver)
	}
}

// provideCacheBreaker 缓存后端熔断器
func provideCacheBreaker(cfg *config.Config) *circuitbreaker.CircuitBreaker {
	failures := cfg.Cache.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	return circuitbreaker.NewCircuitBreaker("query-cache", circuitbreaker.Config{
		Timeout: cfg.Cache.BreakerTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})
}

// provideEventPublisher 未开启mq时返回nil(单实例部署)
//
// 注意：必须返回接口类型的nil，返回(*mq.Publisher)(nil)会得到非nil接口
func provideEventPublisher(cfg *config.Config, logger *zap.Logger) (appreview.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return nil, func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic", logger)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() { _ = publisher.Close() }, nil
}

// provideHealthServer gRPC健康检查，探测数据库连接
func provideHealthServer(db *gorm.DB, logger *zap.Logger) (*grpcapi.HealthServer, error) {
	pinger, err := grpcapi.DBPinger(db)
	if err != nil {
		return nil, err
	}
	return grpcapi.NewHealthServer(pinger, logger), nil
}
