package core

import "time"

// 推理链路默认参数
const (
	// DefaultBatchSize 是每次提交给模型的候选数量
	DefaultBatchSize = 16

	// DefaultTopN 是返回的推荐数量
	DefaultTopN = 12

	// DefaultMinSeqLength 是候选准入所需的最短历史长度
	DefaultMinSeqLength = 1

	// DefaultScoreTimeout 是单个批次打分的默认超时时间
	DefaultScoreTimeout = 5 * time.Second
)

// Clock 返回当前时间，便于测试中固定参考时间。
type Clock func() time.Time
