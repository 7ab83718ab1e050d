// Package pipeline 串联一次推荐请求：补全历史、编码候选、分批打分、排序截断。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/feature"
	"github.com/rushteam/seqrec/filter"
	"github.com/rushteam/seqrec/history"
	"github.com/rushteam/seqrec/metrics"
	"github.com/rushteam/seqrec/model"
	"github.com/rushteam/seqrec/rank"
	"github.com/rushteam/seqrec/rerank"
	"github.com/rushteam/seqrec/vocab"
)

// Deps 是构建 Pipeline 所需的组件。Vocab、Catalog、Scorer 必填。
type Deps struct {
	Vocab   vocab.Resolver
	Catalog *catalog.Catalog
	Scorer  model.Scorer

	// Filters 可选的候选规则
	Filters *filter.Chain
	// History 可选；请求没有携带历史时使用
	History history.Provider
	// Clock 可选；默认 time.Now
	Clock  core.Clock
	Logger zerolog.Logger
}

// Pipeline 是只读的推理链路，可被多个请求并发使用。
type Pipeline struct {
	catalog      *catalog.Catalog
	assembler    *batch.Assembler
	orchestrator *rank.Orchestrator
	scorer       model.Scorer
	history      history.Provider
	clock        core.Clock
	ranker       *rerank.TopNNode
	logger       zerolog.Logger
}

// New 创建推理链路。
func New(deps Deps, opts Options) (*Pipeline, error) {
	if deps.Vocab == nil {
		return nil, errors.New("pipeline: vocabulary resolver is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("pipeline: catalog is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("pipeline: scorer is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	opts = opts.withDefaults()

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger.With().Str("component", "pipeline").Logger()

	encoder := feature.NewEncoder(deps.Vocab, opts.MinSeqLength)
	encoder.MaxSeqLength = opts.MaxSeqLength
	return &Pipeline{
		catalog: deps.Catalog,
		assembler: batch.NewAssembler(encoder, deps.Catalog, batch.Options{
			BatchSize: opts.BatchSize,
			Filters:   deps.Filters,
		}),
		orchestrator: &rank.Orchestrator{
			Scorer:       deps.Scorer,
			BatchTimeout: opts.BatchTimeout,
			Pipelined:    opts.Pipelined,
			QueueSize:    opts.QueueSize,
			Logger:       logger,
		},
		scorer:  deps.Scorer,
		history: deps.History,
		clock:   clock,
		ranker:  &rerank.TopNNode{N: opts.TopN},
		logger:  logger,
	}, nil
}

// Recommend 为一个用户返回按分数降序排列的前 N 个物品。
// 调用方的 req 不会被修改；失败时返回 *StageError。
func (p *Pipeline) Recommend(ctx context.Context, req *core.Request) (*core.Response, error) {
	start := time.Now()
	resp, stats, stage, err := p.run(ctx, req)
	elapsed := time.Since(start)

	metrics.ObserveRequest(outcome(err), elapsed)
	metrics.ObserveCandidates(stats.Admitted, stats.Rejected, stats.Filtered)

	if err != nil {
		p.logger.Warn().Err(err).
			Str("user_id", req.UserID).
			Str("stage", stage.String()).
			Dur("elapsed", elapsed).
			Msg("recommend failed")
		return nil, &StageError{Stage: stage, Err: err}
	}
	p.logger.Debug().
		Str("user_id", req.UserID).
		Str("stage", StageResponded.String()).
		Int("history_len", len(req.ItemIDs)).
		Int("admitted", stats.Admitted).
		Int("rejected", stats.Rejected).
		Int("filtered", stats.Filtered).
		Int("batches", stats.Batches).
		Int("returned", len(resp.Items)).
		Dur("elapsed", elapsed).
		Msg("recommend done")
	return resp, nil
}

func (p *Pipeline) run(ctx context.Context, req *core.Request) (*core.Response, batch.Stats, Stage, error) {
	var stats batch.Stats

	r, err := p.prepare(ctx, req)
	if err != nil {
		return nil, stats, StageRequested, err
	}

	now := r.Now
	if now.IsZero() {
		now = p.clock()
	}
	it, err := p.assembler.Iterate(ctx, r, unixSeconds(now))
	if err != nil {
		return nil, stats, StageEncoding, err
	}

	scored, err := p.orchestrator.Score(ctx, it)
	stats = it.Stats()
	if err != nil {
		if it.Err() != nil {
			return nil, stats, StageBatching, err
		}
		return nil, stats, StageScoring, err
	}

	// 请求已超时或被取消时不再返回结果
	if err := ctx.Err(); err != nil {
		return nil, stats, StageRanking, err
	}
	if r.TopN > 0 {
		return core.NewResponse(rerank.TopK(scored, r.TopN)), stats, StageResponded, nil
	}
	return core.NewResponse(p.ranker.Apply(scored)), stats, StageResponded, nil
}

// prepare 复制请求，并在需要时补全历史与历史类目。
func (p *Pipeline) prepare(ctx context.Context, req *core.Request) (*core.Request, error) {
	r := *req
	if !r.HasHistory() && p.history != nil {
		events, err := p.history.History(ctx, r.UserID)
		if err != nil {
			return nil, err
		}
		r.SetHistory(events)
		if !hasCategory(events) {
			r.CategoryIDs = nil
		}
	}
	if len(r.CategoryIDs) == 0 && len(r.ItemIDs) > 0 {
		r.CategoryIDs = p.catalog.Categories(r.ItemIDs)
	}
	return &r, nil
}

// Ready 检查打分器是否可用（打分器实现了 Health 时）。
func (p *Pipeline) Ready(ctx context.Context) error {
	if h, ok := p.scorer.(interface{ Health(context.Context) error }); ok {
		return h.Health(ctx)
	}
	return nil
}

// Catalog 返回链路使用的商品目录。
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

func hasCategory(events []core.HistoryEvent) bool {
	for _, ev := range events {
		if ev.CategoryID != "" {
			return true
		}
	}
	return false
}

// unixSeconds 返回整秒的 Unix 时间，与训练数据的时间精度一致。
func unixSeconds(t time.Time) float64 {
	return float64(t.Unix())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case core.IsInvalidInput(err):
		return metrics.OutcomeInvalid
	case core.IsUnavailable(err):
		return metrics.OutcomeUnavailable
	}
	return metrics.OutcomeError
}
