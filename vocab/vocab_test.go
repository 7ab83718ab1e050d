package vocab

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/store"
)

func TestVocabularyLookup(t *testing.T) {
	src := map[string]int{"a": 3, "b": 0}
	v, err := New(src)
	if err != nil {
		t.Fatal(err)
	}
	src["c"] = 9

	tests := []struct {
		id      string
		wantIdx int
		wantOK  bool
	}{
		{"a", 3, true},
		{"b", 0, true},
		{"c", UnknownIndex, false},
		{"", UnknownIndex, false},
	}
	for _, tt := range tests {
		idx, ok := v.Lookup(tt.id)
		if idx != tt.wantIdx || ok != tt.wantOK {
			t.Errorf("Lookup(%q) = (%d, %v), want (%d, %v)", tt.id, idx, ok, tt.wantIdx, tt.wantOK)
		}
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}
	if !reflect.DeepEqual(v.ZeroIDs(), []string{"b"}) {
		t.Errorf("ZeroIDs() = %v", v.ZeroIDs())
	}
}

func TestVocabularyNegativeIndex(t *testing.T) {
	if _, err := New(map[string]int{"x": -1}); err == nil {
		t.Fatal("expected error for negative index")
	}
}

func TestSetResolve(t *testing.T) {
	item, _ := New(map[string]int{"A": 1, "B": 2})
	s := &Set{Item: item}

	if got := s.Resolve(AxisItem, "B"); got != 2 {
		t.Errorf("Resolve(item, B) = %d", got)
	}
	if got := s.Resolve(AxisUser, "u1"); got != UnknownIndex {
		t.Errorf("missing vocabulary should resolve to unknown, got %d", got)
	}
	got := ResolveAll(s, AxisItem, []string{"A", "Z", "B"})
	if !reflect.DeepEqual(got, []int{1, 0, 2}) {
		t.Errorf("ResolveAll() = %v", got)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		User:     writeFile(t, dir, "user.json", `{"u1": 1, "u2": 2}`),
		Item:     writeFile(t, dir, "item.yaml", "A: 1\nB: 2\n"),
		Category: writeFile(t, dir, "cat.json", `{"cat1": 1}`),
	}
	s, err := LoadSet(paths)
	if err != nil {
		t.Fatalf("LoadSet() error = %v", err)
	}
	if s.User.Len() != 2 || s.Item.Len() != 2 || s.Category.Len() != 1 {
		t.Errorf("sizes = (%d, %d, %d)", s.User.Len(), s.Item.Len(), s.Category.Len())
	}
	if s.Resolve(AxisItem, "B") != 2 {
		t.Errorf("yaml vocabulary not loaded")
	}

	paths.Category = filepath.Join(dir, "missing.json")
	if _, err := LoadSet(paths); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadSetFromStore(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()

	for axis, fields := range map[string]map[string]string{
		"user":     {"u1": "1"},
		"item":     {"A": "1", "B": "2"},
		"category": {"cat1": " 1 "},
	} {
		for id, idx := range fields {
			if err := kv.HSet(ctx, "vocab:"+axis, id, []byte(idx)); err != nil {
				t.Fatal(err)
			}
		}
	}

	s, err := LoadSetFromStore(ctx, kv, "vocab:")
	if err != nil {
		t.Fatalf("LoadSetFromStore() error = %v", err)
	}
	if s.Resolve(AxisCategory, "cat1") != 1 || s.Resolve(AxisItem, "B") != 2 {
		t.Errorf("unexpected indices")
	}

	_, err = LoadFromStore(ctx, kv, "vocab:missing")
	if !core.IsNotFound(err) {
		t.Errorf("missing hash error = %v, want not found", err)
	}
}
