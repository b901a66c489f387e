package review

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/review"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

// UpdateReviewUseCase 修改评论用例
type UpdateReviewUseCase struct {
	tx      Transactor
	reviews review.Repository
	trigger *Trigger
}

// NewUpdateReviewUseCase 创建用例
func NewUpdateReviewUseCase(tx Transactor, reviews review.Repository, trigger *Trigger) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{
		tx:      tx,
		reviews: reviews,
		trigger: trigger,
	}
}

// UpdateReviewRequest 修改评论请求
type UpdateReviewRequest struct {
	ID     uint
	Rating int
	Review string
}

// Execute 执行用例
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (updated *review.Review, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateReview")
	defer func() { tracing.EndSpan(span, err) }()

	var r *review.Review
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if r, err = uc.reviews.FindByID(ctx, req.ID); err != nil {
			return err
		}
		if err := r.Revise(req.Rating, req.Review); err != nil {
			return err
		}
		return uc.reviews.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	uc.trigger.OnReviewMutated(ctx, r.BookID, review.MutationUpdated)
	return r, nil
}
