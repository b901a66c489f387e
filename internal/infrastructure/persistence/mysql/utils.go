package mysql

import (
	"strings"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// likeEscaper LIKE通配符转义，配合 ESCAPE '!' 使用(MySQL和SQLite都支持)
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern 不区分大小写的子串匹配模式
func containsPattern(substr string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(substr)) + "%"
}

// rangeCondition 评论时间窗口条件(前缀AND)，两端都开放时返回空串
func rangeCondition(r book.DateRange) (string, []interface{}) {
	switch {
	case r.IsOpen():
		return "", nil
	case r.HasFrom() && r.HasTo():
		return " AND reviews.created_at BETWEEN ? AND ?", []interface{}{r.From.UTC(), r.To.UTC()}
	case r.HasFrom():
		return " AND reviews.created_at >= ?", []interface{}{r.From.UTC()}
	default:
		return " AND reviews.created_at <= ?", []interface{}{r.To.UTC()}
	}
}

// reviewSubquery 关联子查询：(SELECT <agg> FROM reviews WHERE reviews.book_id = books.id [AND 时间窗口])
func reviewSubquery(aggregate string, r book.DateRange) (string, []interface{}) {
	cond, args := rangeCondition(r)
	return "(SELECT " + aggregate + " FROM reviews WHERE reviews.book_id = books.id" + cond + ")", args
}
