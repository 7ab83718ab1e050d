// Package model 定义批次打分器 Scorer 及其实现。
//
// 序列推荐模型本身托管在外部模型服务中；这里只负责把批次张量发送出去，
// 并保证返回的分数与批次内候选一一对应。
package model

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/core"
)

// Scorer 对一个批次打分，返回的分数与 batch.ItemIDs 按位置对齐。
type Scorer interface {
	Name() string
	Score(ctx context.Context, b *batch.Batch) ([]float64, error)
}

// FuncScorer 把函数适配为 Scorer，常用于测试或进程内的简单模型。
type FuncScorer struct {
	ScorerName string
	Fn         func(ctx context.Context, b *batch.Batch) ([]float64, error)
}

func (f *FuncScorer) Name() string {
	if f.ScorerName == "" {
		return "model.func"
	}
	return f.ScorerName
}

func (f *FuncScorer) Score(ctx context.Context, b *batch.Batch) ([]float64, error) {
	return f.Fn(ctx, b)
}

// CheckCount 校验分数数量与批次大小一致，不一致时返回包装后的 core.ErrScoreCountMismatch。
func CheckCount(b *batch.Batch, scores []float64) error {
	if len(scores) != b.Len() {
		return fmt.Errorf("%w: expected %d, got %d", core.ErrScoreCountMismatch, b.Len(), len(scores))
	}
	return nil
}

// CheckScores 在 CheckCount 的基础上要求每个分数都是有限数，
// 出现 NaN 或 ±Inf 时返回包装后的 core.ErrNonFiniteScore。
func CheckScores(b *batch.Batch, scores []float64) error {
	if err := CheckCount(b, scores); err != nil {
		return err
	}
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("%w: item %s scored %v", core.ErrNonFiniteScore, b.ItemIDs[i], s)
		}
	}
	return nil
}
