package book

import (
	"strings"
	"time"

	"github.com/xiebiao/bookcatalog/internal/domain/review"
)

// Book 图书实体(聚合根)
// 设计说明：
// 1. ReviewsCount/ReviewsAvgRating是按查询计算的派生字段，不持久化
// 2. 列表查询只在计划包含对应聚合时填充(nil表示未请求)
// 3. 详情查询总是填充两者；没有评论时平均分为nil
type Book struct {
	ID        uint
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time

	Reviews          []*review.Review // 仅详情查询加载，按创建时间倒序
	ReviewsCount     *int64
	ReviewsAvgRating *float64
}

// NewBook 创建新图书(工厂方法)
func NewBook(title string) (*Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	now := time.Now()
	return &Book{
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
