package history

import (
	"context"
	"fmt"

	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/feast"
)

// FeastProvider 从 Feast 在线特征读取用户历史。
//
// 特征视图需要包含两个列表特征（以及可选的类目列表）：
//
//	<view>:item_ids     []string
//	<view>:timestamps   []int64 / []double（Unix 秒）
//	<view>:category_ids []string（可选）
type FeastProvider struct {
	Client      feast.Client
	FeatureView string
	EntityKey   string
	// WithCategories 是否读取 category_ids 特征
	WithCategories bool
	MaxEvents      int
}

func NewFeastProvider(client feast.Client, featureView string) *FeastProvider {
	return &FeastProvider{
		Client:      client,
		FeatureView: featureView,
		EntityKey:   "user_id",
	}
}

func (p *FeastProvider) Name() string {
	return "history.feast"
}

func (p *FeastProvider) feature(name string) string {
	return p.FeatureView + ":" + name
}

func (p *FeastProvider) History(ctx context.Context, userID string) ([]core.HistoryEvent, error) {
	features := []string{p.feature("item_ids"), p.feature("timestamps")}
	if p.WithCategories {
		features = append(features, p.feature("category_ids"))
	}
	resp, err := p.Client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: []map[string]any{{p.EntityKey: userID}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.NewDomainError(core.ModuleHistory, core.ErrorCodeUnavailable, "history: feast lookup failed"), err)
	}
	if len(resp.FeatureVectors) == 0 {
		return nil, nil
	}
	values := resp.FeatureVectors[0].Values

	items, _ := values[p.feature("item_ids")].([]string)
	timestamps, _ := values[p.feature("timestamps")].([]float64)
	if len(items) != len(timestamps) {
		return nil, fmt.Errorf("%w: feast returned %d items and %d timestamps", ErrCorruptHistory, len(items), len(timestamps))
	}
	var categories []string
	if p.WithCategories {
		categories, _ = values[p.feature("category_ids")].([]string)
		if len(categories) != len(items) {
			return nil, fmt.Errorf("%w: feast returned %d items and %d categories", ErrCorruptHistory, len(items), len(categories))
		}
	}

	events := make([]core.HistoryEvent, len(items))
	for i := range items {
		events[i] = core.HistoryEvent{ItemID: items[i], Timestamp: timestamps[i]}
		if categories != nil {
			events[i].CategoryID = categories[i]
		}
	}
	return normalize(events, p.MaxEvents), nil
}
