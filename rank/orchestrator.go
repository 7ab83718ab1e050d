// Package rank 驱动批次打分：从批次迭代器拉取批次，交给 Scorer，
// 并把分数与候选物品按位置对齐。
package rank

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/metrics"
	"github.com/rushteam/seqrec/model"
)

// BatchSource 是批次的拉取式来源，batch.Iterator 实现此接口。
type BatchSource interface {
	Next() (*batch.Batch, bool)
	Err() error
}

// Orchestrator 顺序消费批次并打分，输出保持目录顺序。
//
// 默认模式下同一时刻只有一个批次在途：取批次、打分、再取下一个。
// Pipelined 为 true 时，编码与打分在两个 goroutine 中重叠进行，
// 二者之间通过容量为 QueueSize 的通道连接；输出顺序不变。
// 任何批次打分失败都会终止整个请求，不做重试。
type Orchestrator struct {
	Scorer model.Scorer

	// BatchTimeout 单个批次的打分超时（0 表示只受请求 ctx 约束）
	BatchTimeout time.Duration

	// Pipelined 是否让编码与打分重叠
	Pipelined bool

	// QueueSize 流水线模式下已编码、待打分批次的最大数量（<= 0 时为 1）
	QueueSize int

	Logger zerolog.Logger
}

// Score 消费 src 中的全部批次，返回与目录顺序一致的 (物品, 分数) 列表。
func (o *Orchestrator) Score(ctx context.Context, src BatchSource) ([]core.ScoredCandidate, error) {
	if o.Pipelined {
		return o.scorePipelined(ctx, src)
	}

	var out []core.ScoredCandidate
	for {
		b, ok := src.Next()
		if !ok {
			break
		}
		scored, err := o.scoreBatch(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, scored...)
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) scorePipelined(ctx context.Context, src BatchSource) ([]core.ScoredCandidate, error) {
	depth := o.QueueSize
	if depth <= 0 {
		depth = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan *batch.Batch, depth)

	g.Go(func() error {
		defer close(queue)
		for {
			b, ok := src.Next()
			if !ok {
				return src.Err()
			}
			select {
			case queue <- b:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	var out []core.ScoredCandidate
	g.Go(func() error {
		for b := range queue {
			scored, err := o.scoreBatch(gctx, b)
			if err != nil {
				return err
			}
			out = append(out, scored...)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Orchestrator) scoreBatch(ctx context.Context, b *batch.Batch) ([]core.ScoredCandidate, error) {
	if o.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.BatchTimeout)
		defer cancel()
	}

	name := o.Scorer.Name()
	start := time.Now()
	scores, err := o.Scorer.Score(ctx, b)
	if err == nil {
		err = model.CheckScores(b, scores)
	}
	elapsed := time.Since(start)
	metrics.ObserveBatch(name, elapsed, err)
	if err != nil {
		o.Logger.Error().Err(err).Str("scorer", name).Int("batch_size", b.Len()).Msg("batch scoring failed")
		return nil, err
	}
	o.Logger.Debug().Str("scorer", name).Int("batch_size", b.Len()).Dur("elapsed", elapsed).Msg("batch scored")

	out := make([]core.ScoredCandidate, b.Len())
	for i, id := range b.ItemIDs {
		out[i] = core.ScoredCandidate{ItemID: id, Score: scores[i]}
	}
	return out, nil
}
