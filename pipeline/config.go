package pipeline

import (
	"fmt"
	"time"

	"github.com/rushteam/seqrec/core"
)

// Options 是推理链路的常量配置（支持 YAML/JSON）。
type Options struct {
	// BatchSize 每个打分批次的候选数量
	BatchSize int `yaml:"batch_size" json:"batch_size" validate:"gte=0"`

	// TopN 默认返回数量，请求可以覆盖
	TopN int `yaml:"top_n" json:"top_n" validate:"gte=0"`

	// MinSeqLength 历史序列的最小长度，不足时所有候选都被拒绝
	MinSeqLength int `yaml:"min_seq_length" json:"min_seq_length" validate:"gte=0"`

	// MaxSeqLength 送入模型的最长历史，0 表示不截断
	MaxSeqLength int `yaml:"max_seq_length" json:"max_seq_length" validate:"gte=0"`

	// Pipelined 是否让编码与打分重叠
	Pipelined bool `yaml:"pipelined" json:"pipelined"`

	// QueueSize 流水线模式下待打分批次的最大数量
	QueueSize int `yaml:"queue_size" json:"queue_size" validate:"gte=0"`

	// BatchTimeout 单个批次的打分超时，0 表示不限制
	BatchTimeout time.Duration `yaml:"batch_timeout" json:"batch_timeout" validate:"gte=0"`
}

// DefaultOptions 返回默认配置。
func DefaultOptions() Options {
	return Options{
		BatchSize:    core.DefaultBatchSize,
		TopN:         core.DefaultTopN,
		MinSeqLength: core.DefaultMinSeqLength,
		QueueSize:    1,
	}
}

// withDefaults 用默认值填充零值字段。
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.TopN <= 0 {
		o.TopN = d.TopN
	}
	if o.MinSeqLength <= 0 {
		o.MinSeqLength = d.MinSeqLength
	}
	if o.QueueSize <= 0 {
		o.QueueSize = d.QueueSize
	}
	return o
}

// Validate 检查配置是否合法（负数视为错误，零值使用默认值）。
func (o Options) Validate() error {
	if o.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative: %d", o.BatchSize)
	}
	if o.TopN < 0 {
		return fmt.Errorf("top_n must not be negative: %d", o.TopN)
	}
	if o.MinSeqLength < 0 {
		return fmt.Errorf("min_seq_length must not be negative: %d", o.MinSeqLength)
	}
	if o.MaxSeqLength < 0 {
		return fmt.Errorf("max_seq_length must not be negative: %d", o.MaxSeqLength)
	}
	if o.BatchTimeout < 0 {
		return fmt.Errorf("batch_timeout must not be negative: %s", o.BatchTimeout)
	}
	return nil
}
