package book

import (
	"time"

	"go.uber.org/zap"
)

// NamedFilter 预定义的排行过滤器
type NamedFilter int

const (
	// FilterNone 不过滤(未知或空token)
	FilterNone NamedFilter = iota
	FilterPopularLastMonth
	FilterPopularLast6Months
	FilterHighestRatedLastMonth
	FilterHighestRatedLast6Months
)

var filterTokens = map[string]NamedFilter{
	"popular_last_month":         FilterPopularLastMonth,
	"popular_last_6months":       FilterPopularLast6Months,
	"highest_rated_last_month":   FilterHighestRatedLastMonth,
	"highest_rated_last_6months": FilterHighestRatedLast6Months,
}

// ParseNamedFilter 解析token，无法识别时返回FilterNone
func ParseNamedFilter(token string) NamedFilter {
	if f, ok := filterTokens[token]; ok {
		return f
	}
	return FilterNone
}

func (f NamedFilter) String() string {
	for token, filter := range filterTokens {
		if filter == f {
			return token
		}
	}
	return ""
}

// planBuilder 按时间窗口构建排行计划
type planBuilder func(base Plan, now time.Time, months int, minReviews int64) (Plan, error)

type filterRule struct {
	build      planBuilder
	months     int
	minReviews int64
}

// filterRules 过滤器 → (构建方式，窗口月数，最少评论数)
var filterRules = map[NamedFilter]filterRule{
	FilterPopularLastMonth:        {build: PopularByLastMonths, months: 1, minReviews: 2},
	FilterPopularLast6Months:      {build: PopularByLastMonths, months: 6, minReviews: 5},
	FilterHighestRatedLastMonth:   {build: HighestRatedByLastMonths, months: 1, minReviews: 2},
	FilterHighestRatedLast6Months: {build: HighestRatedByLastMonths, months: 6, minReviews: 5},
}

// PopularByLastMonths 热门排行：先附加评论数，再附加平均分，最后过滤最少评论数
//
// 注意：平均分是最后附加的聚合，所以结果按平均分排序而不是按评论数
func PopularByLastMonths(base Plan, now time.Time, months int, minReviews int64) (Plan, error) {
	window := LastMonths(now, months)
	return base.
		WithPopularityAggregate(window).
		WithRatingAggregate(window).
		WithMinReviews(minReviews)
}

// HighestRatedByLastMonths 高分排行：先附加平均分，再附加评论数，最后过滤最少评论数
//
// 评论数是最后附加的聚合，结果按评论数排序
func HighestRatedByLastMonths(base Plan, now time.Time, months int, minReviews int64) (Plan, error) {
	window := LastMonths(now, months)
	return base.
		WithRatingAggregate(window).
		WithPopularityAggregate(window).
		WithMinReviews(minReviews)
}

// Composer 把(书名，过滤器)组合成查询计划
// 设计说明：
// 1. Compose从不返回错误，内部组合失败时退化为只按书名过滤
// 2. 时钟可注入，固定时钟下输出是确定的
type Composer struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewComposer 创建组合器(使用系统时钟)
func NewComposer(logger *zap.Logger) *Composer {
	return NewComposerWithClock(time.Now, logger)
}

// NewComposerWithClock 创建组合器(使用指定时钟)
func NewComposerWithClock(now func() time.Time, logger *zap.Logger) *Composer {
	return &Composer{now: now, logger: logger}
}

// Compose 构建查询计划
func (c *Composer) Compose(title string, filter NamedFilter) Plan {
	base := NewPlan().WithTitleMatch(title)

	rule, ok := filterRules[filter]
	if !ok {
		return base
	}

	plan, err := rule.build(base, c.now(), rule.months, rule.minReviews)
	if err != nil {
		c.logger.Warn("组合查询计划失败,退化为书名过滤",
			zap.String("filter", filter.String()),
			zap.String("title", title),
			zap.Error(err),
		)
		return base
	}
	return plan
}
