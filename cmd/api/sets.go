package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	appreview "github.com/xiebiao/bookcatalog/internal/application/review"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/cache"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	httpapi "github.com/xiebiao/bookcatalog/internal/interface/http"
	"github.com/xiebiao/bookcatalog/internal/interface/http/handler"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：数据库连接、缓存后端、熔断器、消息发布者
var infrastructureSet = wire.NewSet(
	provideDB,
	provideCacheBackend,
	provideCacheBreaker,
	provideEventPublisher,
	cache.NewQueryCache,
	wire.Bind(new(book.QueryCache), new(*cache.QueryCache)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	mysql.NewReviewRepository,
	mysql.NewTxManager,
	wire.Bind(new(appreview.Transactor), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	book.NewComposer,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appbook.NewListBooksUseCase,
	appbook.NewGetBookDetailUseCase,
	appbook.NewCreateBookUseCase,
	appreview.NewTrigger,
	appreview.NewCreateReviewUseCase,
	appreview.NewUpdateReviewUseCase,
	appreview.NewDeleteReviewUseCase,
)

// interfaceSet 接口层依赖
var interfaceSet = wire.NewSet(
	handler.NewBookHandler,
	handler.NewReviewHandler,
	httpapi.NewRouter,
	provideHealthServer,
)
