package book

import (
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrEmptyTitle 书名为空
	ErrEmptyTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")

	// ErrInvalidFilterPrecondition 最少评论数过滤必须在聚合之后
	ErrInvalidFilterPrecondition = apperrors.New(apperrors.ErrCodeInvalidFilter, "最少评论数过滤需要先附加聚合")
)
