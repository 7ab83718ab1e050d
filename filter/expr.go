package filter

import (
	"context"

	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述过滤规则，表达式为 true 时过滤。
//
// 示例：
//
//	f, err := filter.NewExprFilter(`item.category == "gift_cards" || item.id in history.items`)
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译表达式并创建过滤器。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, req *core.Request, candidate catalog.Entry) (bool, error) {
	return f.prg.Eval(dsl.Input{
		UserID:            req.UserID,
		ItemID:            candidate.ItemID,
		CategoryID:        candidate.CategoryID,
		HistoryItems:      req.ItemIDs,
		HistoryCategories: req.CategoryIDs,
	})
}
