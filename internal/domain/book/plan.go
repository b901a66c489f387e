package book

import (
	"fmt"
	"strings"
	"time"
)

// DateRange 聚合的时间窗口，零值时间表示该端不设限
//
//	只有From： created_at >= From
//	只有To：   created_at <= To
//	两端都有： created_at BETWEEN From AND To（闭区间）
//	两端都无： 不加时间条件
type DateRange struct {
	From time.Time
	To   time.Time
}

// Between 闭区间
func Between(from, to time.Time) DateRange {
	return DateRange{From: from, To: to}
}

// Since 只限制下界
func Since(from time.Time) DateRange {
	return DateRange{From: from}
}

// Until 只限制上界
func Until(to time.Time) DateRange {
	return DateRange{To: to}
}

// LastMonths 最近months个月的窗口，months最小为1
func LastMonths(now time.Time, months int) DateRange {
	if months < 1 {
		months = 1
	}
	return DateRange{From: now.AddDate(0, -months, 0), To: now}
}

// HasFrom 是否有下界
func (r DateRange) HasFrom() bool { return !r.From.IsZero() }

// HasTo 是否有上界
func (r DateRange) HasTo() bool { return !r.To.IsZero() }

// IsOpen 两端都不设限
func (r DateRange) IsOpen() bool { return !r.HasFrom() && !r.HasTo() }

func (r DateRange) String() string {
	from, to := "-inf", "+inf"
	if r.HasFrom() {
		from = r.From.UTC().Format(time.RFC3339)
	}
	if r.HasTo() {
		to = r.To.UTC().Format(time.RFC3339)
	}
	return "[" + from + ", " + to + "]"
}

// OpKind 查询操作类型
type OpKind int

const (
	// OpTitleMatch 书名子串匹配(不区分大小写)
	OpTitleMatch OpKind = iota + 1
	// OpPopularity 附加窗口内评论数，按评论数降序
	OpPopularity
	// OpRating 附加窗口内平均分，按平均分降序
	OpRating
	// OpMinReviews 过滤窗口内评论数不足的图书
	OpMinReviews
)

func (k OpKind) String() string {
	switch k {
	case OpTitleMatch:
		return "title"
	case OpPopularity:
		return "popularity"
	case OpRating:
		return "rating"
	case OpMinReviews:
		return "min_reviews"
	default:
		return "unknown"
	}
}

// IsAggregate 是否为聚合操作
func (k OpKind) IsAggregate() bool {
	return k == OpPopularity || k == OpRating
}

// Op 查询计划中的一个操作
type Op struct {
	Kind  OpKind
	Title string    // OpTitleMatch
	Range DateRange // OpPopularity/OpRating/OpMinReviews
	Min   int64     // OpMinReviews
}

func (o Op) String() string {
	switch o.Kind {
	case OpTitleMatch:
		return fmt.Sprintf("title(%q)", o.Title)
	case OpMinReviews:
		return fmt.Sprintf("min_reviews(%d)%s", o.Min, o.Range)
	default:
		return o.Kind.String() + o.Range.String()
	}
}

// Plan 不可变的查询计划
//
// 每个With*方法返回新的Plan，原Plan不变，因此可以安全地在多个分支复用同一个基础计划：
//
//	base := book.NewPlan().WithTitleMatch("go")
//	popular := base.WithPopularityAggregate(window)
//	rated := base.WithRatingAggregate(window)
//
// 排序规则：最后附加的聚合决定排序，相同值按图书ID升序；没有聚合时按ID升序
type Plan struct {
	ops []Op
}

// NewPlan 空计划(不过滤，按ID升序)
func NewPlan() Plan {
	return Plan{}
}

func (p Plan) with(op Op) Plan {
	ops := make([]Op, len(p.ops), len(p.ops)+1)
	copy(ops, p.ops)
	return Plan{ops: append(ops, op)}
}

// WithTitleMatch 书名子串匹配，空字符串不加条件
func (p Plan) WithTitleMatch(substr string) Plan {
	if substr == "" {
		return p
	}
	return p.with(Op{Kind: OpTitleMatch, Title: substr})
}

// WithPopularityAggregate 附加评论数聚合(reviews_count)
func (p Plan) WithPopularityAggregate(r DateRange) Plan {
	return p.with(Op{Kind: OpPopularity, Range: r})
}

// WithRatingAggregate 附加平均分聚合(reviews_avg_rating)
func (p Plan) WithRatingAggregate(r DateRange) Plan {
	return p.with(Op{Kind: OpRating, Range: r})
}

// WithMinReviews 过滤评论数小于n的图书
//
// 前置条件：计划中已有聚合，评论数按最近一次聚合的时间窗口统计；否则返回ErrInvalidFilterPrecondition
func (p Plan) WithMinReviews(n int64) (Plan, error) {
	last, ok := p.SortAggregate()
	if !ok {
		return p, ErrInvalidFilterPrecondition
	}
	return p.with(Op{Kind: OpMinReviews, Range: last.Range, Min: n}), nil
}

// Ops 操作列表的副本
func (p Plan) Ops() []Op {
	ops := make([]Op, len(p.ops))
	copy(ops, p.ops)
	return ops
}

// Len 操作数
func (p Plan) Len() int {
	return len(p.ops)
}

// SortAggregate 决定排序的聚合(最后附加的那个)
func (p Plan) SortAggregate() (Op, bool) {
	for i := len(p.ops) - 1; i >= 0; i-- {
		if p.ops[i].Kind.IsAggregate() {
			return p.ops[i], true
		}
	}
	return Op{}, false
}

// Aggregate 指定类型的聚合，多次附加时取最后一次
func (p Plan) Aggregate(kind OpKind) (Op, bool) {
	for i := len(p.ops) - 1; i >= 0; i-- {
		if p.ops[i].Kind == kind {
			return p.ops[i], true
		}
	}
	return Op{}, false
}

func (p Plan) String() string {
	if len(p.ops) == 0 {
		return "plan()"
	}
	parts := make([]string, len(p.ops))
	for i, op := range p.ops {
		parts[i] = op.String()
	}
	return "plan(" + strings.Join(parts, " -> ") + ")"
}
