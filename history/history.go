// Package history 在请求没有携带历史序列时，从外部存储读取用户历史。
package history

import (
	"context"
	"slices"

	"github.com/rushteam/seqrec/core"
)

// ErrCorruptHistory 表示存储中的历史数据损坏（序列不等长、无法解码），属于服务端错误。
var ErrCorruptHistory = core.NewDomainError(core.ModuleHistory, core.ErrorCodeInternalError, "history: stored history is corrupt")

// Provider 返回用户按时间升序排列的历史行为；用户没有历史时返回空切片与 nil。
type Provider interface {
	Name() string
	History(ctx context.Context, userID string) ([]core.HistoryEvent, error)
}

// normalize 按时间稳定排序，并只保留最近的 maxEvents 条（<= 0 表示不截断）。
func normalize(events []core.HistoryEvent, maxEvents int) []core.HistoryEvent {
	slices.SortStableFunc(events, func(a, b core.HistoryEvent) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	if maxEvents > 0 && len(events) > maxEvents {
		events = events[len(events)-maxEvents:]
	}
	return events
}
