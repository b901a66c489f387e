package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// CreateBookUseCase 新增图书
//
// 新书不会出现在已缓存的列表中，直到列表条目过期（与评论变更的列表缺口相同）
type CreateBookUseCase struct {
	repo book.Repository
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(repo book.Repository) *CreateBookUseCase {
	return &CreateBookUseCase{repo: repo}
}

// Execute 校验书名并保存，返回数据库中的记录（时间戳以数据库为准）
func (uc *CreateBookUseCase) Execute(ctx context.Context, title string) (created *book.Book, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateBook")
	defer func() { tracing.EndSpan(span, err) }()

	b, err := book.NewBook(title)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return uc.repo.FindByID(ctx, b.ID)
}
