package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/seqrec/filter"
	"github.com/rushteam/seqrec/pkg/conv"
)

// FilterBuilder 根据配置构建候选规则。
type FilterBuilder func(config map[string]any) (filter.Filter, error)

var (
	filterBuilders   = make(map[string]FilterBuilder)
	filterBuildersMu sync.RWMutex
)

func init() {
	Register("blacklist", buildBlacklistFilter)
	Register("history", buildHistoryFilter)
	Register("expr", buildExprFilter)
}

// Register 注册一种候选规则的构建逻辑，供配置驱动使用。
func Register(typeName string, builder FilterBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	filterBuildersMu.Lock()
	defer filterBuildersMu.Unlock()
	filterBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的规则类型（排序），用于错误提示与校验。
func SupportedTypes() []string {
	filterBuildersMu.RLock()
	defer filterBuildersMu.RUnlock()
	types := make([]string, 0, len(filterBuilders))
	for t := range filterBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// BuildFilter 根据类型和配置构建候选规则。
func BuildFilter(fc FilterConfig) (filter.Filter, error) {
	filterBuildersMu.RLock()
	builder, ok := filterBuilders[fc.Type]
	filterBuildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported filter type %q (supported: %v)", fc.Type, SupportedTypes())
	}
	f, err := builder(fc.Config)
	if err != nil {
		return nil, fmt.Errorf("build filter %s: %w", fc.Type, err)
	}
	return f, nil
}

// blacklist: {items: [...], categories: [...]}
func buildBlacklistFilter(config map[string]any) (filter.Filter, error) {
	items := conv.SliceAnyToString(config["items"])
	categories := conv.SliceAnyToString(config["categories"])
	if len(items) == 0 && len(categories) == 0 {
		return nil, fmt.Errorf("items or categories is required")
	}
	return filter.NewBlacklistFilter(items, categories), nil
}

func buildHistoryFilter(_ map[string]any) (filter.Filter, error) {
	return &filter.HistoryFilter{}, nil
}

// expr: {expr: "item.category == 'c1'"}
func buildExprFilter(config map[string]any) (filter.Filter, error) {
	expr := conv.ConfigGet(config, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr is required")
	}
	return filter.NewExprFilter(expr)
}
