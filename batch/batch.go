// Package batch 把目录中的候选编码并切分为定长批次。
//
// 批次按目录顺序产生：除最后一个外每个批次恰好 BatchSize 条记录，
// 最后一个批次为 1..BatchSize 条；不会产生空批次。
package batch

import "github.com/rushteam/seqrec/feature"

// Batch 是一组候选记录及与之一一对应的物品 ID。
type Batch struct {
	Records []*feature.CandidateRecord
	ItemIDs []string
}

func newBatch(capacity int) *Batch {
	return &Batch{
		Records: make([]*feature.CandidateRecord, 0, capacity),
		ItemIDs: make([]string, 0, capacity),
	}
}

func (b *Batch) add(itemID string, rec *feature.CandidateRecord) {
	b.Records = append(b.Records, rec)
	b.ItemIDs = append(b.ItemIDs, itemID)
}

// Len 返回批次内的候选数量。
func (b *Batch) Len() int {
	return len(b.ItemIDs)
}

// Tensors 是批次的列式模型输入。历史序列按批次内最长历史右侧补零，Mask 标记有效位置；
// 历史长度上限由 feature.Encoder.MaxSeqLength 在编码时决定。
// Labels 在推理时无意义，固定为 0。
type Tensors struct {
	Labels          []float64
	Users           []int
	Items           []int
	Categories      []int
	ItemHistory     [][]int
	CategoryHistory [][]int
	Mask            [][]float64
	Time            []float64
	TimeDiff        [][]float64
	TimeFromFirst   [][]float64
	TimeToNow       [][]float64
}

// Tensors 把批次转换为列式张量。
func (b *Batch) Tensors() *Tensors {
	n := b.Len()
	maxLen := 0
	for _, r := range b.Records {
		if len(r.ItemHistory) > maxLen {
			maxLen = len(r.ItemHistory)
		}
	}

	t := &Tensors{
		Labels:          make([]float64, n),
		Users:           make([]int, n),
		Items:           make([]int, n),
		Categories:      make([]int, n),
		ItemHistory:     make([][]int, n),
		CategoryHistory: make([][]int, n),
		Mask:            make([][]float64, n),
		Time:            make([]float64, n),
		TimeDiff:        make([][]float64, n),
		TimeFromFirst:   make([][]float64, n),
		TimeToNow:       make([][]float64, n),
	}
	for i, r := range b.Records {
		t.Users[i] = r.UserIndex
		t.Items[i] = r.ItemIndex
		t.Categories[i] = r.CategoryIndex
		t.Time[i] = r.CurrentTime
		t.ItemHistory[i] = padInts(r.ItemHistory, maxLen)
		t.CategoryHistory[i] = padInts(r.CategoryHistory, maxLen)
		t.TimeDiff[i] = padFloats(r.TimeDiff, maxLen)
		t.TimeFromFirst[i] = padFloats(r.TimeFromFirst, maxLen)
		t.TimeToNow[i] = padFloats(r.TimeToNow, maxLen)

		mask := make([]float64, maxLen)
		for j := 0; j < len(r.ItemHistory) && j < maxLen; j++ {
			mask[j] = 1
		}
		t.Mask[i] = mask
	}
	return t
}

// Inputs 返回以模型输入名为 key 的列式张量，用于 JSON 序列化或 core.MLPredictRequest。
func (t *Tensors) Inputs() map[string]any {
	return map[string]any{
		"labels":                 t.Labels,
		"users":                  t.Users,
		"items":                  t.Items,
		"cates":                  t.Categories,
		"item_history":           t.ItemHistory,
		"item_cate_history":      t.CategoryHistory,
		"mask":                   t.Mask,
		"time":                   t.Time,
		"time_diff":              t.TimeDiff,
		"time_from_first_action": t.TimeFromFirst,
		"time_to_now":            t.TimeToNow,
	}
}

func padInts(src []int, n int) []int {
	out := make([]int, n)
	copy(out, src)
	return out
}

func padFloats(src []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, src)
	return out
}
