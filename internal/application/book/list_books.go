package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

const tracerName = "catalog/application/book"

// ListBooksUseCase 图书列表查询用例
// 设计说明：
// 1. 先查缓存(key=books:<filter>:<title>)，未命中才组合查询计划并访问数据库
// 2. key使用请求中的原始filter token，无法识别的token也单独缓存
// 3. 评论变更不会失效列表缓存，列表最多滞后一个TTL
type ListBooksUseCase struct {
	repo     book.Repository
	composer *book.Composer
	cache    book.QueryCache
	logger   *zap.Logger
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(repo book.Repository, composer *book.Composer, cache book.QueryCache, logger *zap.Logger) *ListBooksUseCase {
	return &ListBooksUseCase{
		repo:     repo,
		composer: composer,
		cache:    cache,
		logger:   logger,
	}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Title  string // 书名子串(不区分大小写)，空表示不过滤
	Filter string // 排行过滤器token，如popular_last_month
}

// Execute 执行列表查询用例
// 学习要点：
// 1. book.Remember把回源结果编码后写入缓存，命中时解码，TTL内多次调用结果完全一致
// 2. Composer在回源函数内部调用，命中缓存时不读时钟也不访问数据库
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (books []*book.Book, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListBooks")
	defer func() { tracing.EndSpan(span, err) }()

	key := book.ListKey(req.Filter, req.Title)

	books, err = book.Remember(ctx, uc.cache, key, book.CacheTTL, func(ctx context.Context) ([]*book.Book, error) {
		plan := uc.composer.Compose(req.Title, book.ParseNamedFilter(req.Filter))
		uc.logger.Debug("列表缓存未命中,执行查询计划",
			zap.String("key", key),
			zap.Stringer("plan", plan),
			zap.Int("ops", plan.Len()),
		)
		return uc.repo.Query(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}
