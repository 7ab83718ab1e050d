// Package filter 提供可选的候选规则：命中规则的目录物品不参与打分。
//
// 默认不启用任何规则，此时历史中出现过的物品同样是合法候选。
package filter

import (
	"context"

	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断候选是否应该被过滤
	ShouldFilter(ctx context.Context, req *core.Request, candidate catalog.Entry) (bool, error)
}

// Chain 依次检查多个过滤器，任何一个返回 true 即过滤。
// 过滤器出错时该过滤器视为不命中，不中断请求；错误通过 OnError 回调上报。
type Chain struct {
	Filters []Filter
	OnError func(f Filter, candidate catalog.Entry, err error)
}

// Match 返回命中的过滤器名称；未命中时返回 ("", false)。
func (c *Chain) Match(ctx context.Context, req *core.Request, candidate catalog.Entry) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, f := range c.Filters {
		ok, err := f.ShouldFilter(ctx, req, candidate)
		if err != nil {
			if c.OnError != nil {
				c.OnError(f, candidate, err)
			}
			continue
		}
		if ok {
			return f.Name(), true
		}
	}
	return "", false
}

// Len 返回过滤器数量。
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Filters)
}
