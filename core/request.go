package core

import "time"

// HistoryEvent 是用户的一次历史行为：物品、类目与发生时间（Unix 秒）。
// 用户历史是按发生时间升序排列的 HistoryEvent 序列（最早的在前）。
type HistoryEvent struct {
	ItemID     string  `json:"item_id"`
	CategoryID string  `json:"category_id"`
	Timestamp  float64 `json:"timestamp"`
}

// Request 是一次预测请求。
//
// 调用方保证 ItemIDs 与 Timestamps 等长且按时间升序。
// CategoryIDs 可选：为空时由商品目录根据 ItemIDs 推导；非空时必须与 ItemIDs 等长。
type Request struct {
	UserID      string
	ItemIDs     []string
	Timestamps  []float64
	CategoryIDs []string

	// Now 是参考时间（可选，零值表示使用服务当前时间）
	Now time.Time

	// TopN 覆盖默认返回数量（可选，<= 0 表示使用默认值）
	TopN int
}

// HasHistory 返回请求是否携带了历史序列。
func (r *Request) HasHistory() bool {
	return len(r.ItemIDs) > 0 || len(r.Timestamps) > 0
}

// SetHistory 用 HistoryEvent 序列填充请求的历史字段。
func (r *Request) SetHistory(events []HistoryEvent) {
	r.ItemIDs = make([]string, len(events))
	r.CategoryIDs = make([]string, len(events))
	r.Timestamps = make([]float64, len(events))
	for i, ev := range events {
		r.ItemIDs[i] = ev.ItemID
		r.CategoryIDs[i] = ev.CategoryID
		r.Timestamps[i] = ev.Timestamp
	}
}

// ScoredCandidate 是一个已打分的候选物品。
type ScoredCandidate struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// Response 是预测响应：Items 与 Preds 按分数降序一一对应。
type Response struct {
	Items []string  `json:"items"`
	Preds []float64 `json:"preds"`
}

// NewResponse 由已排序的候选构建响应。
func NewResponse(ranked []ScoredCandidate) *Response {
	resp := &Response{
		Items: make([]string, 0, len(ranked)),
		Preds: make([]float64, 0, len(ranked)),
	}
	for _, c := range ranked {
		resp.Items = append(resp.Items, c.ItemID)
		resp.Preds = append(resp.Preds, c.Score)
	}
	return resp
}
