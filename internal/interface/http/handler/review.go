package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bookcatalog/internal/application/review"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// ReviewHandler 评论HTTP处理器
// 每个写操作返回前，对应图书的详情缓存已被淘汰
type ReviewHandler struct {
	createReviewUseCase *appreview.CreateReviewUseCase
	updateReviewUseCase *appreview.UpdateReviewUseCase
	deleteReviewUseCase *appreview.DeleteReviewUseCase
}

// NewReviewHandler 创建评论处理器
func NewReviewHandler(
	createReviewUseCase *appreview.CreateReviewUseCase,
	updateReviewUseCase *appreview.UpdateReviewUseCase,
	deleteReviewUseCase *appreview.DeleteReviewUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		createReviewUseCase: createReviewUseCase,
		updateReviewUseCase: updateReviewUseCase,
		deleteReviewUseCase: deleteReviewUseCase,
	}
}

// CreateReview 发表评论
// @Summary      发表评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Param        id      path int               true "图书ID"
// @Param        request body dto.ReviewRequest true "评论内容"
// @Success      200 {object} response.Response{data=dto.ReviewResponse}
// @Failure      200 {object} response.Response "40402 图书不存在 / 40900 参数错误"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	bookID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	created, err := h.createReviewUseCase.Execute(c.Request.Context(), appreview.CreateReviewRequest{
		BookID: bookID,
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReview(created))
}

// UpdateReview 修改评论
// @Summary      修改评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Param        id      path int               true "评论ID"
// @Param        request body dto.ReviewRequest true "评论内容"
// @Success      200 {object} response.Response{data=dto.ReviewResponse}
// @Failure      200 {object} response.Response "40404 评论不存在"
// @Router       /api/v1/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	updated, err := h.updateReviewUseCase.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		ID:     id,
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReview(updated))
}

// DeleteReview 删除评论
// @Summary      删除评论
// @Tags         评论
// @Produce      json
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response
// @Failure      200 {object} response.Response "40404 评论不存在"
// @Router       /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteReviewUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
