package catalog

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/store"
)

func itemIDs(c *Catalog) []string {
	var ids []string
	c.Each(func(e Entry) bool {
		ids = append(ids, e.ItemID)
		return true
	})
	return ids
}

func TestBuilderOrderAndDuplicates(t *testing.T) {
	b := NewBuilder().Add("A", "cat1").Add("B", "cat1").Add("A", "cat9").Add("C", "cat2")
	c := b.Build()
	b.Add("D", "cat3")

	if !reflect.DeepEqual(itemIDs(c), []string{"A", "B", "C"}) {
		t.Errorf("order = %v", itemIDs(c))
	}
	if cat, ok := c.Category("A"); !ok || cat != "cat9" {
		t.Errorf("Category(A) = (%q, %v), want (cat9, true)", cat, ok)
	}
	if _, ok := c.Category("D"); ok {
		t.Error("catalog changed after Build")
	}
	if got := c.Categories([]string{"C", "Z"}); !reflect.DeepEqual(got, []string{"cat2", ""}) {
		t.Errorf("Categories() = %v", got)
	}
}

func TestEachStops(t *testing.T) {
	c := New(Entry{"A", "1"}, Entry{"B", "1"}, Entry{"C", "2"})
	n := 0
	c.Each(func(Entry) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("visited %d entries, want 2", n)
	}
}

func TestLoadTSV(t *testing.T) {
	in := "# item\tcategory\nA\tcat1\n\nB\tcat1\r\nC\tcat2\n"
	c, err := LoadTSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadTSV() error = %v", err)
	}
	if !reflect.DeepEqual(itemIDs(c), []string{"A", "B", "C"}) {
		t.Errorf("order = %v", itemIDs(c))
	}
	if cat, _ := c.Category("B"); cat != "cat1" {
		t.Errorf("Category(B) = %q", cat)
	}

	if _, err := LoadTSV(strings.NewReader("A\n")); err == nil {
		t.Error("expected error for single column line")
	}
}

func TestLoadInteractionsTSV(t *testing.T) {
	in := strings.Join([]string{
		"1\tu1\tB\t100\tcat1",
		"0\tu1\tA\t101\tcat2",
		"1\tu2\tB\t102\tcat3",
	}, "\n")
	c, err := LoadInteractionsTSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadInteractionsTSV() error = %v", err)
	}
	if !reflect.DeepEqual(itemIDs(c), []string{"B", "A"}) {
		t.Errorf("order = %v", itemIDs(c))
	}
	if cat, _ := c.Category("B"); cat != "cat3" {
		t.Errorf("last category should win, got %q", cat)
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "catalog.tsv")
	if err := os.WriteFile(p, []byte("A\tcat1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(p, "tsv")
	if err != nil || c.Len() != 1 {
		t.Fatalf("LoadFile() = (%v, %v)", c, err)
	}
	if _, err := LoadFile(p, "parquet"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	c := New(Entry{"A", "cat1"}, Entry{"B", "cat1"}, Entry{"C", "cat2"})
	if err := SaveToStore(ctx, s, "catalog", c); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFromStore(ctx, s, "catalog")
	if err != nil {
		t.Fatalf("LoadFromStore() error = %v", err)
	}
	if !reflect.DeepEqual(itemIDs(got), []string{"A", "B", "C"}) {
		t.Errorf("order = %v", itemIDs(got))
	}

	_, err = LoadFromStore(ctx, s, "missing")
	if !core.IsNotFound(err) {
		t.Errorf("missing key error = %v, want not found", err)
	}
}
