package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time // 零值表示永不过期
}

// MemoryBackend 进程内缓存后端(单实例部署和测试使用)
//
// 读取时检查过期时间，过期条目不会被返回；时钟可注入
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// NewMemoryBackend 创建进程内缓存后端
func NewMemoryBackend() *MemoryBackend {
	return NewMemoryBackendWithClock(time.Now)
}

// NewMemoryBackendWithClock 使用指定时钟
func NewMemoryBackendWithClock(now func() time.Time) *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string]memoryItem),
		now:   now,
	}
}

// Get 读取未过期的值
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if m.expired(item) {
		m.mu.Lock()
		if current, ok := m.items[key]; ok && m.expired(current) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	return append([]byte(nil), item.value...), true, nil
}

// Set 写入值，ttl<=0表示永不过期
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

// Delete 删除值
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len 当前条目数(包括尚未清理的过期条目)
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryBackend) expired(item memoryItem) bool {
	return !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt)
}
