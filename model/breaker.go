package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/core"
)

// BreakerOptions 熔断器配置
type BreakerOptions struct {
	// MaxRequests 半开状态下允许通过的请求数
	MaxRequests uint32
	// Interval 关闭状态下清零计数的周期（0 表示不清零）
	Interval time.Duration
	// Timeout 打开状态持续多久后进入半开
	Timeout time.Duration
	// ConsecutiveFailures 连续失败多少次后打开
	ConsecutiveFailures uint32
}

// BreakerScorer 用熔断器包装另一个 Scorer。
// 熔断器打开时直接返回 core.ErrScorerUnavailable，不再访问模型服务。
// 分数数量不一致与调用方取消不计入熔断统计。
type BreakerScorer struct {
	next Scorer
	cb   *gobreaker.CircuitBreaker[[]float64]
}

func NewBreakerScorer(next Scorer, opts BreakerOptions, logger zerolog.Logger) *BreakerScorer {
	if opts.MaxRequests == 0 {
		opts.MaxRequests = 1
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ConsecutiveFailures == 0 {
		opts.ConsecutiveFailures = 5
	}
	threshold := opts.ConsecutiveFailures
	logger = logger.With().Str("component", "breaker").Str("scorer", next.Name()).Logger()

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: opts.MaxRequests,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsExcluded: func(err error) bool {
			return errors.Is(err, core.ErrScoreCountMismatch) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("scorer circuit breaker state changed")
		},
	}
	return &BreakerScorer{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[]float64](settings),
	}
}

func (s *BreakerScorer) Name() string {
	return s.next.Name()
}

// State 返回熔断器当前状态
func (s *BreakerScorer) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerScorer) Score(ctx context.Context, b *batch.Batch) ([]float64, error) {
	scores, err := s.cb.Execute(func() ([]float64, error) {
		return s.next.Score(ctx, b)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", core.ErrScorerUnavailable, err)
	}
	return scores, err
}

// Health 熔断器打开时返回 core.ErrScorerUnavailable，否则检查被包装的打分器。
func (s *BreakerScorer) Health(ctx context.Context) error {
	if s.cb.State() == gobreaker.StateOpen {
		return core.ErrScorerUnavailable
	}
	if h, ok := s.next.(interface{ Health(context.Context) error }); ok {
		return h.Health(ctx)
	}
	return nil
}
