// Package catalog 持有商品目录：每个物品 ID 到其类目 ID 的映射。
//
// 目录的枚举顺序就是加载顺序（插入顺序），它决定候选的打分顺序，
// 也因此决定排序阶段同分候选的先后。
package catalog

// Entry 是目录中的一个物品。
type Entry struct {
	ItemID     string `json:"item_id"`
	CategoryID string `json:"category_id"`
}

// Catalog 是只读的有序商品目录，加载后不再修改，可被并发读取。
type Catalog struct {
	entries []Entry
	pos     map[string]int
}

// Builder 按插入顺序构建 Catalog。
// 重复的物品 ID 保留第一次出现的位置，类目取最后一次写入的值。
type Builder struct {
	entries []Entry
	pos     map[string]int
}

func NewBuilder() *Builder {
	return &Builder{pos: make(map[string]int)}
}

// Add 添加或更新一个物品。
func (b *Builder) Add(itemID, categoryID string) *Builder {
	if i, ok := b.pos[itemID]; ok {
		b.entries[i].CategoryID = categoryID
		return b
	}
	b.pos[itemID] = len(b.entries)
	b.entries = append(b.entries, Entry{ItemID: itemID, CategoryID: categoryID})
	return b
}

// Len 返回当前已添加的物品数量。
func (b *Builder) Len() int {
	return len(b.entries)
}

// Build 生成不可变的 Catalog，之后对 Builder 的修改不影响它。
func (b *Builder) Build() *Catalog {
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	pos := make(map[string]int, len(b.pos))
	for k, v := range b.pos {
		pos[k] = v
	}
	return &Catalog{entries: entries, pos: pos}
}

// New 由有序条目创建 Catalog。
func New(entries ...Entry) *Catalog {
	b := NewBuilder()
	for _, e := range entries {
		b.Add(e.ItemID, e.CategoryID)
	}
	return b.Build()
}

// Len 返回物品数量。
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// At 返回第 i 个物品。
func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Category 返回物品的类目，以及物品是否在目录中。
func (c *Catalog) Category(itemID string) (string, bool) {
	if c == nil {
		return "", false
	}
	i, ok := c.pos[itemID]
	if !ok {
		return "", false
	}
	return c.entries[i].CategoryID, true
}

// Categories 为一组物品查找类目；不在目录中的物品得到空类目。
func (c *Catalog) Categories(itemIDs []string) []string {
	out := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		out[i], _ = c.Category(id)
	}
	return out
}

// Each 按目录顺序遍历物品，fn 返回 false 时停止。
func (c *Catalog) Each(fn func(Entry) bool) {
	if c == nil {
		return
	}
	for _, e := range c.entries {
		if !fn(e) {
			return
		}
	}
}
