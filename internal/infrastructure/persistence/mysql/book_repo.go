package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/review"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明：
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 把查询计划翻译成SQL：聚合使用关联子查询，MySQL和SQLite都能执行
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{Title: b.Title}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindDetail 查询图书详情
// 评论按创建时间倒序(同一时间按ID倒序)，评论数和平均分基于全部评论
func (r *bookRepository) FindDetail(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := getDB(ctx, r.db).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at DESC").Order("reviews.id DESC")
		}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书详情失败")
	}

	b := toBookEntity(&model)
	b.Reviews = make([]*review.Review, len(model.Reviews))
	var sum int64
	for i := range model.Reviews {
		b.Reviews[i] = toReviewEntity(&model.Reviews[i])
		sum += int64(model.Reviews[i].Rating)
	}

	count := int64(len(model.Reviews))
	b.ReviewsCount = &count
	if count > 0 {
		avg := float64(sum) / float64(count)
		b.ReviewsAvgRating = &avg
	}
	return b, nil
}

// bookAggregateRow 列表查询的扫描目标
// 未请求的聚合列不在SELECT中，对应字段保持nil
type bookAggregateRow struct {
	ID               uint
	Title            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ReviewsCount     *int64
	ReviewsAvgRating *float64
}

// Query 执行查询计划
//
// 翻译规则：
//
//	TitleMatch       → WHERE LOWER(books.title) LIKE ? ESCAPE '!'
//	Popularity(范围) → SELECT (SELECT COUNT(*) ...) AS reviews_count
//	Rating(范围)     → SELECT (SELECT AVG(reviews.rating) ...) AS reviews_avg_rating
//	MinReviews(n)    → WHERE (SELECT COUNT(*) ...) >= n
//
// 同类聚合附加多次时以最后一次的范围为准；排序按最后附加的聚合降序，再按books.id升序
func (r *bookRepository) Query(ctx context.Context, plan book.Plan) ([]*book.Book, error) {
	columns := []string{"books.id", "books.title", "books.created_at", "books.updated_at"}
	var selectArgs []interface{}

	if op, ok := plan.Aggregate(book.OpPopularity); ok {
		sub, args := reviewSubquery("COUNT(*)", op.Range)
		columns = append(columns, sub+" AS reviews_count")
		selectArgs = append(selectArgs, args...)
	}
	if op, ok := plan.Aggregate(book.OpRating); ok {
		sub, args := reviewSubquery("AVG(reviews.rating)", op.Range)
		columns = append(columns, sub+" AS reviews_avg_rating")
		selectArgs = append(selectArgs, args...)
	}

	query := getDB(ctx, r.db).
		Model(&BookModel{}).
		Select(strings.Join(columns, ", "), selectArgs...)

	for _, op := range plan.Ops() {
		switch op.Kind {
		case book.OpTitleMatch:
			query = query.Where("LOWER(books.title) LIKE ? ESCAPE '!'", containsPattern(op.Title))
		case book.OpMinReviews:
			sub, args := reviewSubquery("COUNT(*)", op.Range)
			query = query.Where(sub+" >= ?", append(args, op.Min)...)
		}
	}

	if op, ok := plan.SortAggregate(); ok {
		switch op.Kind {
		case book.OpPopularity:
			query = query.Order("reviews_count DESC")
		case book.OpRating:
			query = query.Order("reviews_avg_rating DESC")
		}
	}
	query = query.Order("books.id ASC")

	var rows []bookAggregateRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(rows))
	for i := range rows {
		row := rows[i]
		books[i] = &book.Book{
			ID:               row.ID,
			Title:            row.Title,
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
			ReviewsCount:     row.ReviewsCount,
			ReviewsAvgRating: row.ReviewsAvgRating,
		}
	}
	return books, nil
}

// toBookEntity GORM模型 → 领域实体(不含评论和聚合)
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:        model.ID,
		Title:     model.Title,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
