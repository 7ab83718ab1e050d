package pipeline

import "fmt"

// Stage 是一次推荐请求所处的阶段。
//
//	Requested → Encoding → Batching → Scoring → Ranking → Responded
//
// 出错时 StageError.Stage 记录出错所在的阶段；没有重试，也不保存中间状态。
type Stage int

const (
	StageRequested Stage = iota
	StageEncoding
	StageBatching
	StageScoring
	StageRanking
	StageResponded
)

func (s Stage) String() string {
	switch s {
	case StageRequested:
		return "requested"
	case StageEncoding:
		return "encoding"
	case StageBatching:
		return "batching"
	case StageScoring:
		return "scoring"
	case StageRanking:
		return "ranking"
	case StageResponded:
		return "responded"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// StageError 记录请求失败时所处的阶段，Unwrap 返回原始错误。
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
