package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookcatalog/internal/application/book"
	"github.com/xiebiao/bookcatalog/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	listBooksUseCase     *appbook.ListBooksUseCase
	getBookDetailUseCase *appbook.GetBookDetailUseCase
	createBookUseCase    *appbook.CreateBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookDetailUseCase *appbook.GetBookDetailUseCase,
	createBookUseCase *appbook.CreateBookUseCase,
) *BookHandler {
	return &BookHandler{
		listBooksUseCase:     listBooksUseCase,
		getBookDetailUseCase: getBookDetailUseCase,
		createBookUseCase:    createBookUseCase,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  按书名子串过滤,可选热门/高分排行过滤器。结果缓存1小时,评论变更不会立即反映到列表
// @Tags         图书
// @Produce      json
// @Param        title   query string false "书名子串(不区分大小写)"
// @Param        filter  query string false "排行过滤器" Enums(popular_last_month, popular_last_6months, highest_rated_last_month, highest_rated_last_6months)
// @Success      200 {object} response.Response{data=response.ListData{list=[]dto.BookListItem}}
// @Failure      200 {object} response.Response "40901 参数格式错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	// 1. 参数绑定
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	// 2. 调用应用层用例
	books, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Title:  req.Title,
		Filter: req.Filter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 构建HTTP响应
	response.SuccessWithList(c, dto.ToBookListItems(books), len(books))
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  包含全部评论(最新在前)、评论数和平均分
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookDetailResponse}
// @Failure      200 {object} response.Response "40402 图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.getBookDetailUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookDetail(detail))
}

// CreateBook 新增图书
// @Summary      新增图书
// @Description  已缓存的列表在过期前不包含新书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBookRequest true "书名"
// @Success      200 {object} response.Response{data=dto.BookListItem}
// @Failure      200 {object} response.Response "40901 参数绑定失败 / 40900 书名为空"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	created, err := h.createBookUseCase.Execute(c.Request.Context(), req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBookListItem(created))
}

// parseID 解析路径参数中的正整数ID，失败时已写入错误响应
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的ID: "+c.Param(name))
		return 0, false
	}
	return uint(id), true
}
