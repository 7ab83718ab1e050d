package feature

import (
	"fmt"

	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/vocab"
)

// CandidateRecord 是一个 (用户, 候选物品) 对的模型输入。
// 历史相关的切片在同一请求的所有候选之间共享，调用方不得修改。
type CandidateRecord struct {
	UserIndex       int
	ItemIndex       int
	CategoryIndex   int
	ItemHistory     []int
	CategoryHistory []int
	CurrentTime     float64
	TimeDiff        []float64
	TimeFromFirst   []float64
	TimeToNow       []float64
}

// History 是请求级的预处理结果：已解析的历史索引序列、时间特征与参考时间。
// 同一请求内对每个候选都相同，因此只计算一次。
type History struct {
	ItemHistory     []int
	CategoryHistory []int
	CurrentTime     float64
	Temporal        *TemporalFeatures
	// SeqLength 截断前的历史长度，用于准入判断
	SeqLength int
}

// Encoder 把一个候选编码为 CandidateRecord，并执行最短历史长度的准入规则。
// Encoder 无状态，可被多个请求并发使用。
type Encoder struct {
	Resolver vocab.Resolver

	// MinSeqLength 候选准入所需的最短历史长度（<= 0 时使用 core.DefaultMinSeqLength）
	MinSeqLength int

	// MaxSeqLength 送入模型的最长历史（<= 0 表示不截断），超出时只保留最近的事件
	MaxSeqLength int
}

// NewEncoder 创建候选编码器。
func NewEncoder(resolver vocab.Resolver, minSeqLength int) *Encoder {
	return &Encoder{Resolver: resolver, MinSeqLength: minSeqLength}
}

func (e *Encoder) minSeqLength() int {
	if e.MinSeqLength <= 0 {
		return core.DefaultMinSeqLength
	}
	return e.MinSeqLength
}

// PrepareHistory 校验并预处理请求历史。
//
// 三个序列必须非空且等长，否则分别返回 core.ErrEmptyHistory / core.ErrHistoryShape。
// 时间特征在完整历史上计算，之后才按 MaxSeqLength 截断。
func (e *Encoder) PrepareHistory(itemIDs, categoryIDs []string, timestamps []float64, now float64) (*History, error) {
	if len(itemIDs) == 0 || len(timestamps) == 0 {
		return nil, core.ErrEmptyHistory
	}
	if len(itemIDs) != len(categoryIDs) || len(itemIDs) != len(timestamps) {
		return nil, fmt.Errorf("items=%d categories=%d timestamps=%d: %w",
			len(itemIDs), len(categoryIDs), len(timestamps), core.ErrHistoryShape)
	}

	temporal, err := EncodeTemporal(timestamps, now)
	if err != nil {
		return nil, err
	}
	if m := e.MaxSeqLength; m > 0 && len(itemIDs) > m {
		itemIDs = lastN(itemIDs, m)
		categoryIDs = lastN(categoryIDs, m)
		temporal = &TemporalFeatures{
			TimeDiff:      lastN(temporal.TimeDiff, m),
			TimeFromFirst: lastN(temporal.TimeFromFirst, m),
			TimeToNow:     lastN(temporal.TimeToNow, m),
		}
	}
	return &History{
		ItemHistory:     vocab.ResolveAll(e.Resolver, vocab.AxisItem, itemIDs),
		CategoryHistory: vocab.ResolveAll(e.Resolver, vocab.AxisCategory, categoryIDs),
		CurrentTime:     now,
		Temporal:        temporal,
		SeqLength:       len(timestamps),
	}, nil
}

func lastN[T any](s []T, n int) []T {
	return s[len(s)-n:]
}

// Admits 返回历史是否满足准入规则。
func (e *Encoder) Admits(h *History) bool {
	return h.SeqLength >= e.minSeqLength()
}

// EncodeWith 使用预处理过的历史编码一个候选；不满足准入规则时返回 (nil, false)。
func (e *Encoder) EncodeWith(h *History, userID, itemID, categoryID string) (*CandidateRecord, bool) {
	if !e.Admits(h) {
		return nil, false
	}
	return &CandidateRecord{
		UserIndex:       e.Resolver.Resolve(vocab.AxisUser, userID),
		ItemIndex:       e.Resolver.Resolve(vocab.AxisItem, itemID),
		CategoryIndex:   e.Resolver.Resolve(vocab.AxisCategory, categoryID),
		ItemHistory:     h.ItemHistory,
		CategoryHistory: h.CategoryHistory,
		CurrentTime:     h.CurrentTime,
		TimeDiff:        h.Temporal.TimeDiff,
		TimeFromFirst:   h.Temporal.TimeFromFirst,
		TimeToNow:       h.Temporal.TimeToNow,
	}, true
}

// Encode 从原始输入编码单个候选，等价于 PrepareHistory + EncodeWith。
// 被准入规则拒绝时返回 (nil, false, nil)；历史结构错误时返回 error。
func (e *Encoder) Encode(
	userID, itemID, categoryID string,
	now float64,
	historyItemIDs, historyCategoryIDs []string,
	historyTimestamps []float64,
) (*CandidateRecord, bool, error) {
	h, err := e.PrepareHistory(historyItemIDs, historyCategoryIDs, historyTimestamps, now)
	if err != nil {
		return nil, false, err
	}
	rec, ok := e.EncodeWith(h, userID, itemID, categoryID)
	return rec, ok, nil
}
