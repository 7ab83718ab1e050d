package vocab

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/seqrec/core"
)

// Paths 是三个维度词表文件的路径。
type Paths struct {
	User     string `yaml:"user" json:"user"`
	Item     string `yaml:"item" json:"item"`
	Category string `yaml:"category" json:"category"`
}

// LoadFile 从文件加载词表，按扩展名选择格式：
//   - .yaml / .yml：YAML 映射 {id: index}
//   - 其他：JSON 对象 {"id": index}
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	index := make(map[string]int)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &index); err != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &index); err != nil {
			return nil, fmt.Errorf("parse json %s: %w", path, err)
		}
	}
	return New(index)
}

// LoadSet 加载三个维度的词表，任一失败即返回错误（服务不应在词表缺失时启动）。
func LoadSet(paths Paths) (*Set, error) {
	user, err := LoadFile(paths.User)
	if err != nil {
		return nil, fmt.Errorf("load user vocab: %w", err)
	}
	item, err := LoadFile(paths.Item)
	if err != nil {
		return nil, fmt.Errorf("load item vocab: %w", err)
	}
	category, err := LoadFile(paths.Category)
	if err != nil {
		return nil, fmt.Errorf("load category vocab: %w", err)
	}
	return &Set{User: user, Item: item, Category: category}, nil
}

// LoadFromStore 从 KeyValueStore 的 Hash 加载词表：field 为原始 ID，value 为十进制索引。
func LoadFromStore(ctx context.Context, kv core.KeyValueStore, key string) (*Vocabulary, error) {
	fields, err := kv.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, core.NewDomainError(core.ModuleVocab, core.ErrorCodeNotFound,
			fmt.Sprintf("vocab: hash %s is empty or missing", key))
	}

	index := make(map[string]int, len(fields))
	for id, raw := range fields {
		idx, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("parse index of %q in %s: %w", id, key, err)
		}
		index[id] = idx
	}
	return New(index)
}

// LoadSetFromStore 从 KeyValueStore 加载三个维度的词表，
// key 分别为 prefix+"user"、prefix+"item"、prefix+"category"。
func LoadSetFromStore(ctx context.Context, kv core.KeyValueStore, prefix string) (*Set, error) {
	set := &Set{}
	for _, axis := range Axes {
		v, err := LoadFromStore(ctx, kv, prefix+axis.String())
		if err != nil {
			return nil, fmt.Errorf("load %s vocab: %w", axis, err)
		}
		switch axis {
		case AxisUser:
			set.User = v
		case AxisItem:
			set.Item = v
		case AxisCategory:
			set.Category = v
		}
	}
	return set, nil
}
