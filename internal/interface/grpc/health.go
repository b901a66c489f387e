// Package grpc gRPC健康检查服务
//
// 供Kubernetes/负载均衡探测：数据库可达时SERVING，否则NOT_SERVING
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"
)

// ServiceName 健康检查中的服务名
const ServiceName = "catalog.v1.Catalog"

const probeInterval = 10 * time.Second

// Pinger 依赖探测
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer gRPC健康检查服务器
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	pinger Pinger
	logger *zap.Logger
}

// NewHealthServer 创建健康检查服务器
func NewHealthServer(pinger Pinger, logger *zap.Logger) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	// 便于grpcurl调试
	reflection.Register(server)

	return &HealthServer{
		server: server,
		health: hs,
		pinger: pinger,
		logger: logger,
	}
}

// DBPinger 从GORM连接获取探测器
func DBPinger(db *gorm.DB) (Pinger, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库连接失败: %w", err)
	}
	return sqlDB, nil
}

// Probe 探测一次依赖并更新状态
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.PingContext(ctx); err != nil {
		s.logger.Warn("健康检查失败", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Serve 在lis上提供服务，并定期探测，直到ctx取消或Stop
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	s.Probe(ctx)

	go func() {
		ticker := time.NewTicker(probeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Probe(ctx)
			}
		}
	}()

	s.logger.Info("gRPC健康检查服务启动", zap.String("addr", lis.Addr().String()))
	return s.server.Serve(lis)
}

// Stop 标记为NOT_SERVING并优雅停止
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
