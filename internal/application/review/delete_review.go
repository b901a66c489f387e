package review

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/review"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// DeleteReviewUseCase 删除评论用例
type DeleteReviewUseCase struct {
	tx      Transactor
	reviews review.Repository
	trigger *Trigger
}

// NewDeleteReviewUseCase 创建用例
func NewDeleteReviewUseCase(tx Transactor, reviews review.Repository, trigger *Trigger) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{
		tx:      tx,
		reviews: reviews,
		trigger: trigger,
	}
}

// Execute 删除评论，评论不存在时返回review.ErrReviewNotFound
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, id uint) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteReview")
	defer func() { tracing.EndSpan(span, err) }()

	// 删除前先取出BookID，提交后才知道要淘汰哪本书
	var bookID uint
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		r, err := uc.reviews.FindByID(ctx, id)
		if err != nil {
			return err
		}
		bookID = r.BookID
		return uc.reviews.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.trigger.OnReviewMutated(ctx, bookID, review.MutationDeleted)
	return nil
}
