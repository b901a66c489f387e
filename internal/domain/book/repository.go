package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明：
// 1. 由domain层定义接口，infrastructure层实现
// 2. Query接收不可变的查询计划，由实现翻译成SQL
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(不加载评论)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindDetail 查询详情：加载评论(倒序)，并计算评论数和平均分
	FindDetail(ctx context.Context, id uint) (*Book, error)

	// Query 执行查询计划，结果顺序由计划决定
	Query(ctx context.Context, plan Plan) ([]*Book, error)
}
