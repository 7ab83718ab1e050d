// Package vocab 把原始 user/item/category ID 映射为模型使用的稠密整数索引。
//
// 词表在离线训练时生成，服务启动时加载一次，之后只读。
// 未出现在词表中的 ID 统一映射为保留索引 UnknownIndex（0），这不是错误。
//
// 注意：索引 0 同时表示"词表中索引为 0 的 ID"与"未知 ID"。
// 需要区分两者时使用 Vocabulary.Lookup。
package vocab

import "fmt"

// UnknownIndex 是未知 ID 的保留索引。
const UnknownIndex = 0

// Axis 标识词表的维度。
type Axis int

const (
	AxisUser Axis = iota
	AxisItem
	AxisCategory
)

func (a Axis) String() string {
	switch a {
	case AxisUser:
		return "user"
	case AxisItem:
		return "item"
	case AxisCategory:
		return "category"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Axes 按固定顺序列出所有维度。
var Axes = []Axis{AxisUser, AxisItem, AxisCategory}

// Vocabulary 是单个维度的不可变词表。
type Vocabulary struct {
	index map[string]int
}

// New 由 ID→索引映射创建词表（会复制入参，调用方之后修改 map 不影响词表）。
func New(index map[string]int) (*Vocabulary, error) {
	cp := make(map[string]int, len(index))
	for id, idx := range index {
		if idx < 0 {
			return nil, fmt.Errorf("vocab: negative index %d for id %q", idx, id)
		}
		cp[id] = idx
	}
	return &Vocabulary{index: cp}, nil
}

// Lookup 返回 ID 的索引以及它是否存在于词表中。
func (v *Vocabulary) Lookup(id string) (int, bool) {
	if v == nil {
		return UnknownIndex, false
	}
	idx, ok := v.index[id]
	if !ok {
		return UnknownIndex, false
	}
	return idx, true
}

// Index 返回 ID 的索引，未知 ID 返回 UnknownIndex。
func (v *Vocabulary) Index(id string) int {
	idx, _ := v.Lookup(id)
	return idx
}

// Len 返回词表大小。
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.index)
}

// ZeroIDs 返回被显式分配为索引 0 的 ID（这些 ID 与未知 ID 无法区分）。
func (v *Vocabulary) ZeroIDs() []string {
	if v == nil {
		return nil
	}
	var ids []string
	for id, idx := range v.index {
		if idx == UnknownIndex {
			ids = append(ids, id)
		}
	}
	return ids
}

// Set 持有 user/item/category 三个维度的词表，实现 Resolver。
type Set struct {
	User     *Vocabulary
	Item     *Vocabulary
	Category *Vocabulary
}

// Resolver 把原始 ID 解析为索引。实现必须是纯函数且并发安全。
type Resolver interface {
	Resolve(axis Axis, id string) int
}

// Get 返回指定维度的词表（可能为 nil）。
func (s *Set) Get(axis Axis) *Vocabulary {
	if s == nil {
		return nil
	}
	switch axis {
	case AxisUser:
		return s.User
	case AxisItem:
		return s.Item
	case AxisCategory:
		return s.Category
	default:
		return nil
	}
}

// Resolve 实现 Resolver：缺失的 ID（或缺失的词表）返回 UnknownIndex。
func (s *Set) Resolve(axis Axis, id string) int {
	return s.Get(axis).Index(id)
}

// ResolveAll 逐个解析 ID 序列，输出与输入等长。
func ResolveAll(r Resolver, axis Axis, ids []string) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = r.Resolve(axis, id)
	}
	return out
}

var _ Resolver = (*Set)(nil)
