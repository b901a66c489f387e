package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// GetBookDetailUseCase 图书详情用例
// 详情包含全部评论(按创建时间倒序)、评论数和平均分，缓存key为book:<id>
type GetBookDetailUseCase struct {
	repo  book.Repository
	cache book.QueryCache
}

// NewGetBookDetailUseCase 创建详情用例
func NewGetBookDetailUseCase(repo book.Repository, cache book.QueryCache) *GetBookDetailUseCase {
	return &GetBookDetailUseCase{
		repo:  repo,
		cache: cache,
	}
}

// Execute 查询图书详情
// 图书不存在时返回book.ErrBookNotFound，错误结果不写入缓存
func (uc *GetBookDetailUseCase) Execute(ctx context.Context, id uint) (detail *book.Book, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "GetBookDetail")
	defer func() { tracing.EndSpan(span, err) }()

	detail, err = book.Remember(ctx, uc.cache, book.DetailKey(id), book.CacheTTL, func(ctx context.Context) (*book.Book, error) {
		return uc.repo.FindDetail(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
