package batch

import (
	"context"
	"iter"

	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/feature"
	"github.com/rushteam/seqrec/filter"
)

// Options 是 Assembler 的配置。
type Options struct {
	// BatchSize 每个批次的候选数量（<= 0 时使用 core.DefaultBatchSize）
	BatchSize int

	// Filters 可选的候选规则，命中的物品不进入任何批次
	Filters *filter.Chain
}

// Assembler 遍历整个目录，用 feature.Encoder 编码每个候选并组装批次。
// Assembler 只读，可被多个请求并发使用。
type Assembler struct {
	encoder   *feature.Encoder
	catalog   *catalog.Catalog
	batchSize int
	filters   *filter.Chain
}

// NewAssembler 创建批次组装器。
func NewAssembler(encoder *feature.Encoder, cat *catalog.Catalog, opts Options) *Assembler {
	size := opts.BatchSize
	if size <= 0 {
		size = core.DefaultBatchSize
	}
	return &Assembler{
		encoder:   encoder,
		catalog:   cat,
		batchSize: size,
		filters:   opts.Filters,
	}
}

// BatchSize 返回批次容量。
func (a *Assembler) BatchSize() int {
	return a.batchSize
}

// Iterate 校验请求历史并返回一个惰性迭代器。
// 请求必须已经带有与物品等长的 CategoryIDs；历史结构错误在此处返回，不会延迟到迭代中。
func (a *Assembler) Iterate(ctx context.Context, req *core.Request, now float64) (*Iterator, error) {
	h, err := a.encoder.PrepareHistory(req.ItemIDs, req.CategoryIDs, req.Timestamps, now)
	if err != nil {
		return nil, err
	}
	return &Iterator{
		ctx:     ctx,
		a:       a,
		req:     req,
		history: h,
	}, nil
}

// Stats 是一次迭代的计数。
type Stats struct {
	Seen     int // 已遍历的目录物品
	Filtered int // 被候选规则过滤
	Rejected int // 被准入规则拒绝
	Admitted int // 进入批次
	Batches  int // 已产生的批次
}

// Iterator 是一次性的拉取式迭代器：调用方通过 Next 控制节奏，没有预取。
// Iterator 不是并发安全的，也不能重新开始。
type Iterator struct {
	ctx     context.Context
	a       *Assembler
	req     *core.Request
	history *feature.History

	pos   int
	done  bool
	err   error
	stats Stats
}

// Next 返回下一个批次；目录遍历完毕或 ctx 取消时返回 (nil, false)，后者可通过 Err 获取原因。
func (it *Iterator) Next() (*Batch, bool) {
	if it.done {
		return nil, false
	}
	if err := it.ctx.Err(); err != nil {
		it.err = err
		it.done = true
		return nil, false
	}

	cat := it.a.catalog
	b := newBatch(it.a.batchSize)
	for it.pos < cat.Len() {
		entry := cat.At(it.pos)
		it.pos++
		it.stats.Seen++

		if _, hit := it.a.filters.Match(it.ctx, it.req, entry); hit {
			it.stats.Filtered++
			continue
		}

		rec, ok := it.a.encoder.EncodeWith(it.history, it.req.UserID, entry.ItemID, entry.CategoryID)
		if !ok {
			it.stats.Rejected++
			continue
		}
		it.stats.Admitted++
		b.add(entry.ItemID, rec)

		if b.Len() == it.a.batchSize {
			it.stats.Batches++
			return b, true
		}
	}

	it.done = true
	if b.Len() == 0 {
		return nil, false
	}
	it.stats.Batches++
	return b, true
}

// Err 返回导致迭代提前结束的错误（ctx 取消）。
func (it *Iterator) Err() error {
	return it.err
}

// Stats 返回到目前为止的计数。
func (it *Iterator) Stats() Stats {
	return it.stats
}

// All 以 range-over-func 的形式消费剩余批次。
func (it *Iterator) All() iter.Seq[*Batch] {
	return func(yield func(*Batch) bool) {
		for {
			b, ok := it.Next()
			if !ok || !yield(b) {
				return
			}
		}
	}
}
