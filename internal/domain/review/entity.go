package review

import (
	"strings"
	"time"
)

// 评分范围
const (
	MinRating = 1
	MaxRating = 5
)

// Review 评论实体
// 设计说明：
// 1. 每条评论只属于一本图书(BookID)，图书的聚合值只统计自己的评论
// 2. 评论是Review Store的真实数据，缓存中的评论只是副本
type Review struct {
	ID        uint
	BookID    uint
	Rating    int    // 评分(1-5)
	Review    string // 评论正文
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReview 创建评论(工厂方法，校验业务规则)
func NewReview(bookID uint, rating int, body string) (*Review, error) {
	if err := validate(rating, body); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Review{
		BookID:    bookID,
		Rating:    rating,
		Review:    strings.TrimSpace(body),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Revise 修改评分和正文
func (r *Review) Revise(rating int, body string) error {
	if err := validate(rating, body); err != nil {
		return err
	}
	r.Rating = rating
	r.Review = strings.TrimSpace(body)
	r.UpdatedAt = time.Now()
	return nil
}

func validate(rating int, body string) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if strings.TrimSpace(body) == "" {
		return ErrEmptyReview
	}
	return nil
}

// MutationKind 评论变更类型
type MutationKind string

const (
	MutationCreated MutationKind = "created"
	MutationUpdated MutationKind = "updated"
	MutationDeleted MutationKind = "deleted"
)

// Valid 是否为已知的变更类型
func (k MutationKind) Valid() bool {
	switch k {
	case MutationCreated, MutationUpdated, MutationDeleted:
		return true
	}
	return false
}
