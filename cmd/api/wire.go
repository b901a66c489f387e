//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire在编译期生成依赖创建代码（wire_gen.go），零运行时反射
// 2. 修改本文件后运行 `wire gen ./cmd/api` 重新生成
// 3. 接口与实现的绑定用wire.Bind声明

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
)

// InitializeApp 初始化整个应用
//
// 教学说明：
// cfg和logger由main创建后传入（main需要先用它们初始化日志、指标和追踪）
// cleanup按创建的逆序关闭消息连接、Redis、数据库
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		NewApp,
	)
	return nil, nil, nil
}
