package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/review"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// reviewRepository 评论仓储实现(MySQL)
// 所有方法都通过getDB(ctx)取连接，可以在TxManager事务内调用
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建评论
// 先确认图书存在(SQLite默认不检查外键)
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	db := getDB(ctx, r.db)

	var owner BookModel
	if err := db.Select("id").First(&owner, rv.BookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return book.ErrBookNotFound
		}
		return apperrors.Wrap(err, "查询图书失败")
	}

	model := &ReviewModel{
		BookID:    rv.BookID,
		Review:    rv.Review,
		Rating:    rv.Rating,
		CreatedAt: rv.CreatedAt.UTC(), // 时间窗口按UTC比较
		UpdatedAt: rv.UpdatedAt.UTC(),
	}
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建评论失败")
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	rv.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找评论
func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model ReviewModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.Wrap(err, "查询评论失败")
	}
	return toReviewEntity(&model), nil
}

// Update 更新评分和正文
// updated_at每次都会变化，MySQL不会因为内容相同而返回0行
func (r *reviewRepository) Update(ctx context.Context, rv *review.Review) error {
	result := getDB(ctx, r.db).Model(&ReviewModel{ID: rv.ID}).Updates(map[string]interface{}{
		"rating":     rv.Rating,
		"review":     rv.Review,
		"updated_at": rv.UpdatedAt.UTC(),
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// Delete 删除评论
func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&ReviewModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除评论失败")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

// toReviewEntity GORM模型 → 领域实体
func toReviewEntity(model *ReviewModel) *review.Review {
	return &review.Review{
		ID:        model.ID,
		BookID:    model.BookID,
		Rating:    model.Rating,
		Review:    model.Review,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
