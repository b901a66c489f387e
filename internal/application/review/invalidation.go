package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/review"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// 评论事件路由：review.created / review.updated / review.deleted
const (
	routingKeyPrefix = "review."
	RoutingPattern   = routingKeyPrefix + "*"
)

// kindRemote 远程事件在指标中的kind标签
const kindRemote = "remote"

// EventPublisher 评论事件发布者(由pkg/mq实现)
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// MutationEvent 评论变更事件
type MutationEvent struct {
	BookID     uint                `json:"book_id"`
	Kind       review.MutationKind `json:"kind"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// RoutingKey 变更类型对应的路由键
func RoutingKey(kind review.MutationKind) string {
	return routingKeyPrefix + string(kind)
}

// Trigger 评论变更后的缓存失效
// 设计说明：
// 1. 只淘汰详情缓存book:<id>，列表缓存books:*保留到自然过期
// 2. 写操作已经提交，淘汰失败只记录日志和指标，不返回给调用方
// 3. publisher非nil时广播事件，其他实例通过ApplyRemote淘汰自己的缓存
type Trigger struct {
	cache     book.QueryCache
	publisher EventPublisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewTrigger 创建失效触发器，publisher可以为nil(单实例部署)
func NewTrigger(cache book.QueryCache, publisher EventPublisher, logger *zap.Logger) *Trigger {
	return &Trigger{
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// OnReviewMutated 评论创建/修改/删除并提交后调用
//
// 返回时本实例的book:<bookID>已被淘汰(后端故障时除外，此时已记录日志)
func (t *Trigger) OnReviewMutated(ctx context.Context, bookID uint, kind review.MutationKind) {
	t.evict(ctx, bookID, string(kind))

	if t.publisher == nil {
		return
	}
	event := MutationEvent{BookID: bookID, Kind: kind, OccurredAt: t.now().UTC()}
	if err := t.publisher.Publish(ctx, RoutingKey(kind), event); err != nil {
		t.logger.Warn("广播评论变更事件失败",
			zap.Uint("book_id", bookID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

// ApplyRemote 处理其他实例广播的评论事件，只淘汰不再广播
//
// 无法解析的消息直接丢弃(返回nil)，淘汰失败返回错误让消息重新入队
func (t *Trigger) ApplyRemote(ctx context.Context, msg mq.Message) error {
	var event MutationEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		t.logger.Error("丢弃无法解析的评论事件", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		return nil
	}
	if !event.Kind.Valid() || event.BookID == 0 || !strings.HasPrefix(msg.RoutingKey, routingKeyPrefix) {
		t.logger.Error("丢弃无效的评论事件",
			zap.String("routing_key", msg.RoutingKey),
			zap.Uint("book_id", event.BookID),
			zap.String("kind", string(event.Kind)),
		)
		return nil
	}

	if err := t.cache.Forget(ctx, book.DetailKey(event.BookID)); err != nil {
		metrics.IncCounterVec(metrics.CacheInvalidationsTotal, map[string]string{"kind": kindRemote, "result": "failure"})
		return fmt.Errorf("淘汰图书%d详情缓存失败: %w", event.BookID, err)
	}
	metrics.IncCounterVec(metrics.CacheInvalidationsTotal, map[string]string{"kind": kindRemote, "result": "success"})
	return nil
}

func (t *Trigger) evict(ctx context.Context, bookID uint, kind string) {
	key := book.DetailKey(bookID)
	if err := t.cache.Forget(ctx, key); err != nil {
		metrics.IncCounterVec(metrics.CacheInvalidationsTotal, map[string]string{"kind": kind, "result": "failure"})
		t.logger.Error("淘汰详情缓存失败,详情可能在TTL内返回旧数据",
			zap.String("key", key),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}
	metrics.IncCounterVec(metrics.CacheInvalidationsTotal, map[string]string{"kind": kind, "result": "success"})
}
