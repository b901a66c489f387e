package review

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/review"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

const tracerName = "catalog/application/review"

// Transactor 事务执行者(由mysql.TxManager实现)
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateReviewUseCase 发表评论用例
// 教学要点：
// 1. 先在事务中写入，提交成功后再淘汰缓存
// 2. 顺序反过来的话，并发的详情请求可能在提交前把旧数据重新写回缓存
type CreateReviewUseCase struct {
	tx      Transactor
	reviews review.Repository
	trigger *Trigger
}

// NewCreateReviewUseCase 创建用例
func NewCreateReviewUseCase(tx Transactor, reviews review.Repository, trigger *Trigger) *CreateReviewUseCase {
	return &CreateReviewUseCase{
		tx:      tx,
		reviews: reviews,
		trigger: trigger,
	}
}

// CreateReviewRequest 发表评论请求
type CreateReviewRequest struct {
	BookID uint
	Rating int
	Review string
}

// Execute 执行用例
// 图书不存在时返回book.ErrBookNotFound
func (uc *CreateReviewUseCase) Execute(ctx context.Context, req CreateReviewRequest) (created *review.Review, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateReview")
	defer func() { tracing.EndSpan(span, err) }()

	// 1. 校验评分和正文
	r, err := review.NewReview(req.BookID, req.Rating, req.Review)
	if err != nil {
		return nil, err
	}

	// 2. 事务内写入(仓储会检查图书是否存在)
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		return uc.reviews.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	// 3. 提交后淘汰详情缓存
	uc.trigger.OnReviewMutated(ctx, r.BookID, review.MutationCreated)
	return r, nil
}
