package review

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/internal/domain/review"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// recordingCache 只记录Forget的key
type recordingCache struct {
	mu        sync.Mutex
	forgotten []string
	err       error
}

func (c *recordingCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute book.ComputeFunc) ([]byte, error) {
	return compute(ctx)
}

func (c *recordingCache) Forget(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forgotten = append(c.forgotten, key)
	return c.err
}

type published struct {
	routingKey string
	message    interface{}
}

type fakePublisher struct {
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	p.sent = append(p.sent, published{routingKey: routingKey, message: message})
	return p.err
}

// passthroughTx 直接执行fn
type passthroughTx struct{ calls int }

func (tx *passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

// memoryReviews 内存评论仓储
type memoryReviews struct {
	nextID  uint
	reviews map[uint]*review.Review
}

func newMemoryReviews() *memoryReviews {
	return &memoryReviews{reviews: make(map[uint]*review.Review)}
}

func (m *memoryReviews) Create(_ context.Context, r *review.Review) error {
	if r.BookID == 0 {
		return book.ErrBookNotFound
	}
	m.nextID++
	r.ID = m.nextID
	copied := *r
	m.reviews[r.ID] = &copied
	return nil
}

func (m *memoryReviews) FindByID(_ context.Context, id uint) (*review.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return nil, review.ErrReviewNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memoryReviews) Update(_ context.Context, r *review.Review) error {
	if _, ok := m.reviews[r.ID]; !ok {
		return review.ErrReviewNotFound
	}
	copied := *r
	m.reviews[r.ID] = &copied
	return nil
}

func (m *memoryReviews) Delete(_ context.Context, id uint) error {
	if _, ok := m.reviews[id]; !ok {
		return review.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func TestTrigger_EvictsDetailKeyOnly(t *testing.T) {
	cache := &recordingCache{}
	trigger := NewTrigger(cache, nil, zap.NewNop())

	for _, kind := range []review.MutationKind{review.MutationCreated, review.MutationUpdated, review.MutationDeleted} {
		trigger.OnReviewMutated(context.Background(), 7, kind)
	}

	assert.Equal(t, []string{"book:7", "book:7", "book:7"}, cache.forgotten)
}

func TestTrigger_ForgetFailureIsLoggedNotPropagated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	cache := &recordingCache{err: errors.New("redis: connection refused")}
	publisher := &fakePublisher{}
	trigger := NewTrigger(cache, publisher, zap.New(core))

	trigger.OnReviewMutated(context.Background(), 3, review.MutationCreated)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "book:3", logs.All()[0].ContextMap()["key"])
	// 本地淘汰失败仍然广播，其他实例照常淘汰
	assert.Len(t, publisher.sent, 1)
}

func TestTrigger_PublishesEventAfterEviction(t *testing.T) {
	cache := &recordingCache{}
	publisher := &fakePublisher{}
	trigger := NewTrigger(cache, publisher, zap.NewNop())
	at := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	trigger.now = func() time.Time { return at }

	trigger.OnReviewMutated(context.Background(), 42, review.MutationDeleted)

	require.Len(t, publisher.sent, 1)
	assert.Equal(t, "review.deleted", publisher.sent[0].routingKey)
	assert.Equal(t, MutationEvent{BookID: 42, Kind: review.MutationDeleted, OccurredAt: at}, publisher.sent[0].message)
	assert.Equal(t, []string{"book:42"}, cache.forgotten)
}

func TestTrigger_PublishFailureIgnored(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	trigger := NewTrigger(&recordingCache{}, &fakePublisher{err: errors.New("channel closed")}, zap.New(core))

	trigger.OnReviewMutated(context.Background(), 1, review.MutationUpdated)

	assert.Equal(t, 1, logs.FilterMessage("广播评论变更事件失败").Len())
}

func remoteMessage(t *testing.T, event MutationEvent) mq.Message {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return mq.Message{RoutingKey: RoutingKey(event.Kind), Body: body}
}

func TestTrigger_ApplyRemote(t *testing.T) {
	cache := &recordingCache{}
	publisher := &fakePublisher{}
	trigger := NewTrigger(cache, publisher, zap.NewNop())

	err := trigger.ApplyRemote(context.Background(), remoteMessage(t, MutationEvent{BookID: 9, Kind: review.MutationUpdated}))

	require.NoError(t, err)
	assert.Equal(t, []string{"book:9"}, cache.forgotten)
	assert.Empty(t, publisher.sent)
}

func TestTrigger_ApplyRemoteDropsBadMessages(t *testing.T) {
	cache := &recordingCache{}
	trigger := NewTrigger(cache, nil, zap.NewNop())
	ctx := context.Background()

	assert.NoError(t, trigger.ApplyRemote(ctx, mq.Message{RoutingKey: "review.created", Body: []byte("{")}))
	assert.NoError(t, trigger.ApplyRemote(ctx, remoteMessage(t, MutationEvent{BookID: 1, Kind: "archived"})))
	assert.NoError(t, trigger.ApplyRemote(ctx, remoteMessage(t, MutationEvent{Kind: review.MutationCreated})))
	assert.Empty(t, cache.forgotten)
}

func TestTrigger_ApplyRemoteForgetFailureRequeues(t *testing.T) {
	trigger := NewTrigger(&recordingCache{err: errors.New("timeout")}, nil, zap.NewNop())

	err := trigger.ApplyRemote(context.Background(), remoteMessage(t, MutationEvent{BookID: 5, Kind: review.MutationCreated}))
	assert.Error(t, err)
}

func TestCreateReview(t *testing.T) {
	cache := &recordingCache{}
	tx := &passthroughTx{}
	reviews := newMemoryReviews()
	uc := NewCreateReviewUseCase(tx, reviews, NewTrigger(cache, nil, zap.NewNop()))

	created, err := uc.Execute(context.Background(), CreateReviewRequest{BookID: 2, Rating: 4, Review: "  solid  "})
	require.NoError(t, err)

	assert.Equal(t, "solid", created.Review)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, []string{"book:2"}, cache.forgotten)
}

func TestCreateReview_InvalidInputSkipsWriteAndEviction(t *testing.T) {
	cache := &recordingCache{}
	tx := &passthroughTx{}
	uc := NewCreateReviewUseCase(tx, newMemoryReviews(), NewTrigger(cache, nil, zap.NewNop()))

	_, err := uc.Execute(context.Background(), CreateReviewRequest{BookID: 2, Rating: 6, Review: "x"})
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	_, err = uc.Execute(context.Background(), CreateReviewRequest{BookID: 2, Rating: 3, Review: " "})
	assert.ErrorIs(t, err, review.ErrEmptyReview)

	assert.Zero(t, tx.calls)
	assert.Empty(t, cache.forgotten)
}

func TestCreateReview_MissingBook(t *testing.T) {
	cache := &recordingCache{}
	uc := NewCreateReviewUseCase(&passthroughTx{}, newMemoryReviews(), NewTrigger(cache, nil, zap.NewNop()))

	_, err := uc.Execute(context.Background(), CreateReviewRequest{BookID: 0, Rating: 3, Review: "x"})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
	assert.Empty(t, cache.forgotten)
}

func TestUpdateReview(t *testing.T) {
	cache := &recordingCache{}
	reviews := newMemoryReviews()
	trigger := NewTrigger(cache, nil, zap.NewNop())
	created, err := NewCreateReviewUseCase(&passthroughTx{}, reviews, trigger).
		Execute(context.Background(), CreateReviewRequest{BookID: 8, Rating: 2, Review: "meh"})
	require.NoError(t, err)

	uc := NewUpdateReviewUseCase(&passthroughTx{}, reviews, trigger)
	updated, err := uc.Execute(context.Background(), UpdateReviewRequest{ID: created.ID, Rating: 5, Review: "great"})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "great", reviews.reviews[created.ID].Review)
	assert.Equal(t, []string{"book:8", "book:8"}, cache.forgotten)

	_, err = uc.Execute(context.Background(), UpdateReviewRequest{ID: 99, Rating: 5, Review: "x"})
	assert.ErrorIs(t, err, review.ErrReviewNotFound)

	_, err = uc.Execute(context.Background(), UpdateReviewRequest{ID: created.ID, Rating: 0, Review: "x"})
	assert.ErrorIs(t, err, review.ErrInvalidRating)
	assert.Len(t, cache.forgotten, 2)
}

func TestDeleteReview(t *testing.T) {
	cache := &recordingCache{}
	reviews := newMemoryReviews()
	trigger := NewTrigger(cache, nil, zap.NewNop())
	created, err := NewCreateReviewUseCase(&passthroughTx{}, reviews, trigger).
		Execute(context.Background(), CreateReviewRequest{BookID: 4, Rating: 3, Review: "ok"})
	require.NoError(t, err)

	uc := NewDeleteReviewUseCase(&passthroughTx{}, reviews, trigger)
	require.NoError(t, uc.Execute(context.Background(), created.ID))

	assert.Empty(t, reviews.reviews)
	assert.Equal(t, []string{"book:4", "book:4"}, cache.forgotten)

	assert.ErrorIs(t, uc.Execute(context.Background(), created.ID), review.ErrReviewNotFound)
	assert.Len(t, cache.forgotten, 2)
}
