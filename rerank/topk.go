// Package rerank 对打分后的候选排序并截断。
package rerank

import (
	"math"
	"slices"

	"github.com/rushteam/seqrec/core"
)

// TopK 返回分数最高的 k 个候选，按分数降序排列。
//
//   - 同分时保持输入顺序（即目录顺序）
//   - NaN 分数排在所有数值之后
//   - k <= 0 返回 nil；k 大于候选数时返回全部候选
//   - 不修改输入切片
func TopK(scored []core.ScoredCandidate, k int) []core.ScoredCandidate {
	if k <= 0 || len(scored) == 0 {
		return nil
	}
	ranked := slices.Clone(scored)
	slices.SortStableFunc(ranked, compareScore)
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

func compareScore(a, b core.ScoredCandidate) int {
	aNaN, bNaN := math.IsNaN(a.Score), math.IsNaN(b.Score)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	return 0
}

// TopNNode 是按固定数量截断的 TopK 包装，N <= 0 时使用 core.DefaultTopN。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

// Apply 对候选排序并截取前 N 个。
func (n *TopNNode) Apply(scored []core.ScoredCandidate) []core.ScoredCandidate {
	k := n.N
	if k <= 0 {
		k = core.DefaultTopN
	}
	return TopK(scored, k)
}
