// Package seqrec 是序列推荐模型的在线打分服务。
//
// 设计要点：
// - 全目录打分：每个请求对整个商品目录编码候选，按固定批次大小交给外部模型服务
// - 时间特征：历史间隔、距首次行为、距当前时间三组对数天数特征，下限 0.5 天
// - 分数对齐：模型返回的分数数量必须与批次一致，否则整个请求失败
//
// 链路：补全历史 → 编码 → 分批 → 打分 → TopN。
package seqrec

import (
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/pipeline"
)

// 轻量 facade：便于直接 import "seqrec" 使用核心抽象。
type (
	Pipeline   = pipeline.Pipeline
	Deps       = pipeline.Deps
	Options    = pipeline.Options
	StageError = pipeline.StageError
	Request    = core.Request
	Response   = core.Response
)

// New 创建推理链路，等价于 pipeline.New。
func New(deps Deps, opts Options) (*Pipeline, error) {
	return pipeline.New(deps, opts)
}

// DefaultOptions 返回默认链路配置。
func DefaultOptions() Options {
	return pipeline.DefaultOptions()
}
