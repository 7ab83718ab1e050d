package history

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/seqrec/core"
)

// FallbackProvider 在主来源不可用（UNAVAILABLE）时降级到备用来源。
// 其他错误（例如历史结构错误）直接返回，不做降级。
type FallbackProvider struct {
	Primary  Provider
	Fallback Provider
	Logger   zerolog.Logger
}

func (p *FallbackProvider) Name() string {
	return "history.fallback"
}

func (p *FallbackProvider) History(ctx context.Context, userID string) ([]core.HistoryEvent, error) {
	events, err := p.Primary.History(ctx, userID)
	if err == nil || !core.IsUnavailable(err) || p.Fallback == nil {
		return events, err
	}
	p.Logger.Warn().Err(err).
		Str("primary", p.Primary.Name()).
		Str("fallback", p.Fallback.Name()).
		Msg("history source unavailable, falling back")
	return p.Fallback.History(ctx, userID)
}
