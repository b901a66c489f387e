package review

import (
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 评论领域错误定义
var (
	// ErrReviewNotFound 评论不存在
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "评论不存在")

	// ErrInvalidRating 评分超出范围
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须在1-5之间")

	// ErrEmptyReview 评论内容为空
	ErrEmptyReview = apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容不能为空")
)
