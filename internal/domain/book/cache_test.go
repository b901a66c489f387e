package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache 不过期的内存缓存，只用于测试Remember
type mapCache struct {
	data     map[string][]byte
	computes int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) GetOrCompute(ctx context.Context, key string, _ time.Duration, compute ComputeFunc) ([]byte, error) {
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	c.computes++
	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	c.data[key] = v
	return v, nil
}

func (c *mapCache) Forget(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "books:popular_last_month:go", ListKey("popular_last_month", "go"))
	assert.Equal(t, "books::", ListKey("", ""))
	assert.Equal(t, "book:42", DetailKey(42))
}

// TestListKey_EmptyAndAbsentTitleCollide 未传书名和空书名是同一个key
func TestListKey_EmptyAndAbsentTitleCollide(t *testing.T) {
	var absent string
	assert.Equal(t, ListKey("x", ""), ListKey("x", absent))
	assert.Equal(t, "books:x:", ListKey("x", absent))
}

func TestRemember(t *testing.T) {
	cache := newMapCache()
	ctx := context.Background()
	count := int64(3)

	compute := func(context.Context) ([]*Book, error) {
		return []*Book{{ID: 1, Title: "Dune", ReviewsCount: &count}}, nil
	}

	first, err := Remember(ctx, cache, ListKey("", ""), CacheTTL, compute)
	require.NoError(t, err)
	second, err := Remember(ctx, cache, ListKey("", ""), CacheTTL, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.computes)
	assert.Equal(t, first, second)
	require.Len(t, second, 1)
	assert.Equal(t, "Dune", second[0].Title)
	assert.Equal(t, int64(3), *second[0].ReviewsCount)
	assert.Nil(t, second[0].ReviewsAvgRating)
}

func TestRemember_ComputeError(t *testing.T) {
	cache := newMapCache()
	_, err := Remember(context.Background(), cache, DetailKey(1), CacheTTL, func(context.Context) (*Book, error) {
		return nil, ErrBookNotFound
	})
	assert.True(t, errors.Is(err, ErrBookNotFound))
	assert.Empty(t, cache.data, "失败结果不缓存")
}

func TestNewBook(t *testing.T) {
	b, err := NewBook("  Dune ")
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)

	_, err = NewBook(" ")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}
