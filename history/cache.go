package history

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/seqrec/core"
)

// CachedProvider 在进程内缓存另一个 Provider 的结果，采用 TTL + LRU 策略，
// 用于减少对 Redis / Feast 的访问。空历史同样会被缓存。
// 返回的切片在多个请求间共享，调用方不得修改。
type CachedProvider struct {
	next    Provider
	ttl     time.Duration
	maxSize int

	mu          sync.Mutex
	entries     map[string]*cacheEntry
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

type cacheEntry struct {
	events     []core.HistoryEvent
	expireTime time.Time
	accessTime time.Time
}

// NewCachedProvider 创建带缓存的历史来源，并启动过期清理协程。
func NewCachedProvider(next Provider, maxSize int, ttl time.Duration) *CachedProvider {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &CachedProvider{
		next:        next,
		ttl:         ttl,
		maxSize:     maxSize,
		entries:     make(map[string]*cacheEntry),
		stopCleanup: make(chan struct{}),
	}
	go c.cleanup(time.Minute)
	return c
}

func (c *CachedProvider) Name() string {
	return "history.cached." + c.next.Name()
}

func (c *CachedProvider) History(ctx context.Context, userID string) ([]core.HistoryEvent, error) {
	now := time.Now()
	c.mu.Lock()
	if e, ok := c.entries[userID]; ok && now.Before(e.expireTime) {
		e.accessTime = now
		c.mu.Unlock()
		return e.events, nil
	}
	c.mu.Unlock()

	events, err := c.next.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		c.evictLRU()
	}
	c.entries[userID] = &cacheEntry{
		events:     events,
		expireTime: now.Add(c.ttl),
		accessTime: now,
	}
	return events, nil
}

// Invalidate 删除某个用户的缓存
func (c *CachedProvider) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Len 返回缓存条目数
func (c *CachedProvider) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close 停止清理协程
func (c *CachedProvider) Close() error {
	c.closeOnce.Do(func() { close(c.stopCleanup) })
	return nil
}

func (c *CachedProvider) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanExpired(time.Now())
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *CachedProvider) cleanExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for userID, e := range c.entries {
		if !now.Before(e.expireTime) {
			delete(c.entries, userID)
		}
	}
}

// evictLRU 删除最久未访问的条目，调用方持有锁
func (c *CachedProvider) evictLRU() {
	var (
		oldestKey  string
		oldestTime time.Time
		first      = true
	)
	for key, e := range c.entries {
		if first || e.accessTime.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.accessTime
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
