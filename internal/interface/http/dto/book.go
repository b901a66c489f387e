package dto

import (
	"time"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/review"
)

const timeLayout = "2006-01-02 15:04:05"

// ListBooksRequest HTTP图书列表请求
// filter取值见book.NamedFilter，无法识别的值按不过滤处理(不报错)
type ListBooksRequest struct {
	Title  string `form:"title" binding:"max=200" example:"go"`
	Filter string `form:"filter" binding:"max=64" example:"popular_last_month"`
}

// CreateBookRequest HTTP新增图书请求
type CreateBookRequest struct {
	Title string `json:"title" binding:"required,max=200" example:"Go语言实战"`
}

// BookListItem HTTP图书列表项
// 聚合字段只在对应过滤器请求了聚合时出现
type BookListItem struct {
	ID               uint     `json:"id" example:"1"`
	Title            string   `json:"title" example:"Go语言实战"`
	ReviewsCount     *int64   `json:"reviews_count,omitempty" example:"3"`
	ReviewsAvgRating *float64 `json:"reviews_avg_rating,omitempty" example:"4.67"`
	CreatedAt        string   `json:"created_at" example:"2024-01-15 10:30:00"`
}

// BookDetailResponse HTTP图书详情
type BookDetailResponse struct {
	ID               uint             `json:"id" example:"1"`
	Title            string           `json:"title" example:"Go语言实战"`
	ReviewsCount     int64            `json:"reviews_count" example:"3"`
	ReviewsAvgRating *float64         `json:"reviews_avg_rating" example:"4.67"` // 没有评论时为null
	Reviews          []ReviewResponse `json:"reviews"`
	CreatedAt        string           `json:"created_at" example:"2024-01-15 10:30:00"`
	UpdatedAt        string           `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// ToBookListItems 领域实体 → 列表项
func ToBookListItems(books []*book.Book) []BookListItem {
	items := make([]BookListItem, len(books))
	for i, b := range books {
		items[i] = ToBookListItem(b)
	}
	return items
}

// ToBookListItem 单本图书（新增图书的响应也使用列表项结构）
func ToBookListItem(b *book.Book) BookListItem {
	return BookListItem{
		ID:               b.ID,
		Title:            b.Title,
		ReviewsCount:     b.ReviewsCount,
		ReviewsAvgRating: b.ReviewsAvgRating,
		CreatedAt:        formatTime(b.CreatedAt),
	}
}

// ToBookDetail 领域实体 → 详情
func ToBookDetail(b *book.Book) *BookDetailResponse {
	resp := &BookDetailResponse{
		ID:               b.ID,
		Title:            b.Title,
		ReviewsAvgRating: b.ReviewsAvgRating,
		Reviews:          make([]ReviewResponse, len(b.Reviews)),
		CreatedAt:        formatTime(b.CreatedAt),
		UpdatedAt:        formatTime(b.UpdatedAt),
	}
	if b.ReviewsCount != nil {
		resp.ReviewsCount = *b.ReviewsCount
	}
	for i, r := range b.Reviews {
		resp.Reviews[i] = *ToReview(r)
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// =========================================
// 评论相关DTO
// =========================================

// ReviewRequest HTTP发表/修改评论请求
// 评分范围和正文非空由领域层再校验一次
type ReviewRequest struct {
	Review string `json:"review" binding:"required,max=5000" example:"讲解清晰,例子实用"`
	Rating int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
}

// ReviewResponse HTTP评论响应
type ReviewResponse struct {
	ID        uint   `json:"id" example:"1"`
	BookID    uint   `json:"book_id" example:"1"`
	Rating    int    `json:"rating" example:"5"`
	Review    string `json:"review" example:"讲解清晰,例子实用"`
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
	UpdatedAt string `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// ToReview 领域实体 → 评论响应
func ToReview(r *review.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        r.ID,
		BookID:    r.BookID,
		Rating:    r.Rating,
		Review:    r.Review,
		CreatedAt: formatTime(r.CreatedAt),
		UpdatedAt: formatTime(r.UpdatedAt),
	}
}
