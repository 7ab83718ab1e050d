package history

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/seqrec/core"
)

// DefaultKeyPrefix 用户历史在 Store 中的 key 前缀
const DefaultKeyPrefix = "seqrec:history:"

// StoreProvider 从 core.Store（生产环境为 Redis）读取用户历史。
// 每个用户一个 key，value 为 core.HistoryEvent 的 JSON 数组。
type StoreProvider struct {
	Store     core.Store
	KeyPrefix string
	MaxEvents int
}

func NewStoreProvider(s core.Store, keyPrefix string) *StoreProvider {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &StoreProvider{Store: s, KeyPrefix: keyPrefix}
}

func (p *StoreProvider) Name() string {
	return "history.store." + p.Store.Name()
}

func (p *StoreProvider) key(userID string) string {
	return p.KeyPrefix + userID
}

func (p *StoreProvider) History(ctx context.Context, userID string) ([]core.HistoryEvent, error) {
	data, err := p.Store.Get(ctx, p.key(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("history %s: %w", userID, err)
	}
	var events []core.HistoryEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: user %s: %w", ErrCorruptHistory, userID, err)
	}
	return normalize(events, p.MaxEvents), nil
}

// Save 写入用户历史（离线任务或测试使用）
func (p *StoreProvider) Save(ctx context.Context, userID string, events []core.HistoryEvent, ttl ...int) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("history %s: encode: %w", userID, err)
	}
	return p.Store.Set(ctx, p.key(userID), data, ttl...)
}
