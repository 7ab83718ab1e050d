package filter

import (
	"context"

	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单中的物品或类目。
type BlacklistFilter struct {
	itemIDs     map[string]struct{}
	categoryIDs map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs, categoryIDs []string) *BlacklistFilter {
	f := &BlacklistFilter{
		itemIDs:     make(map[string]struct{}, len(itemIDs)),
		categoryIDs: make(map[string]struct{}, len(categoryIDs)),
	}
	for _, id := range itemIDs {
		f.itemIDs[id] = struct{}{}
	}
	for _, id := range categoryIDs {
		f.categoryIDs[id] = struct{}{}
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(_ context.Context, _ *core.Request, candidate catalog.Entry) (bool, error) {
	if _, ok := f.itemIDs[candidate.ItemID]; ok {
		return true, nil
	}
	_, ok := f.categoryIDs[candidate.CategoryID]
	return ok, nil
}

// HistoryFilter 过滤掉用户历史中已经出现过的物品。
type HistoryFilter struct{}

func (f *HistoryFilter) Name() string {
	return "filter.history"
}

func (f *HistoryFilter) ShouldFilter(_ context.Context, req *core.Request, candidate catalog.Entry) (bool, error) {
	for _, id := range req.ItemIDs {
		if id == candidate.ItemID {
			return true, nil
		}
	}
	return false, nil
}
