package catalog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/seqrec/core"
)

// LoadTSV 读取 "item_id<TAB>category_id" 格式的目录，每行一个物品。
// 空行与以 '#' 开头的行被忽略。
func LoadTSV(r io.Reader) (*Catalog, error) {
	b := NewBuilder()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) < 2 {
			return nil, fmt.Errorf("catalog line %d: want 2 columns, got %d", line, len(cols))
		}
		b.Add(cols[0], cols[1])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	return b.Build(), nil
}

// LoadInteractionsTSV 从训练样本文件推导目录。
// 每行格式为 "label<TAB>user_id<TAB>item_id<TAB>timestamp<TAB>category_id"，
// 物品顺序以首次出现为准，类目以最后一次出现为准。
func LoadInteractionsTSV(r io.Reader) (*Catalog, error) {
	b := NewBuilder()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) < 5 {
			return nil, fmt.Errorf("interactions line %d: want 5 columns, got %d", line, len(cols))
		}
		b.Add(cols[2], cols[4])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan interactions: %w", err)
	}
	return b.Build(), nil
}

// LoadFile 按格式读取目录文件，format 为 "tsv"（默认）或 "interactions"。
func LoadFile(path, format string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	switch format {
	case "", "tsv":
		return LoadTSV(f)
	case "interactions":
		return LoadInteractionsTSV(f)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}
}

// LoadFromStore 从 Store 的单个 key 读取目录：值为 [[item_id, category_id], ...] 形式的 JSON 数组，
// 数组顺序即目录顺序。
func LoadFromStore(ctx context.Context, s core.Store, key string) (*Catalog, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeNotFound,
				fmt.Sprintf("catalog: key %s not found", key))
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	var pairs [][]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", key, err)
	}
	b := NewBuilder()
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("catalog %s entry %d: want [item, category], got %d values", key, i, len(p))
		}
		b.Add(p[0], p[1])
	}
	return b.Build(), nil
}

// SaveToStore 以 LoadFromStore 能读取的格式写入目录。
func SaveToStore(ctx context.Context, s core.Store, key string, c *Catalog) error {
	pairs := make([][]string, 0, c.Len())
	c.Each(func(e Entry) bool {
		pairs = append(pairs, []string{e.ItemID, e.CategoryID})
		return true
	})
	data, err := json.Marshal(pairs)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return s.Set(ctx, key, data)
}
