package review

import (
	"context"
)

// Repository 评论仓储接口
// 写操作由应用层在事务中调用，提交后再触发缓存失效
type Repository interface {
	// Create 创建评论(图书不存在时返回book.ErrBookNotFound)
	Create(ctx context.Context, review *Review) error

	// FindByID 根据ID查找评论
	FindByID(ctx context.Context, id uint) (*Review, error)

	// Update 更新评分和正文
	Update(ctx context.Context, review *Review) error

	// Delete 删除评论
	Delete(ctx context.Context, id uint) error
}
