package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("user", cel.DynType),
		cel.Variable("history", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Input 是候选规则表达式可访问的数据。
type Input struct {
	UserID            string
	ItemID            string
	CategoryID        string
	HistoryItems      []string
	HistoryCategories []string
}

// Program 是编译后的候选规则表达式，使用 CEL (Common Expression Language)。
// 编译一次，可被并发地多次求值。
//
// 可用变量：
//   - item.id / item.category：候选物品与类目
//   - user.id：请求用户
//   - history.items / history.categories：请求历史（列表）
//
// 示例：
//   - `item.id in history.items` → 候选已在历史中出现
//   - `item.category == "gift_cards"` → 候选属于某类目
//   - `size(history.items) > 3 && item.category in history.categories`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；结果是否为 bool 在 Eval 时检查。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string {
	return p.expr
}

// Eval 对输入求值，返回布尔结果。
func (p *Program) Eval(in Input) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(in))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(in Input) map[string]interface{} {
	historyItems := in.HistoryItems
	if historyItems == nil {
		historyItems = []string{}
	}
	historyCategories := in.HistoryCategories
	if historyCategories == nil {
		historyCategories = []string{}
	}
	return map[string]interface{}{
		"item": map[string]interface{}{
			"id":       in.ItemID,
			"category": in.CategoryID,
		},
		"user": map[string]interface{}{
			"id": in.UserID,
		},
		"history": map[string]interface{}{
			"items":      historyItems,
			"categories": historyCategories,
		},
	}
}
