package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/seqrec/core"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get() = (%q, %v)", got, err)
	}

	res, err := s.BatchGet(ctx, []string{"k", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || string(res["k"]) != "v" {
		t.Errorf("BatchGet() = %v", res)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(deleted) error = %v", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v"), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after expiry error = %v", err)
	}
}

func TestMemoryStoreHash(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.HSet(ctx, "h", "a", []byte("1"))
	_ = s.HSet(ctx, "h", "b", []byte("2"))
	_ = s.HSet(ctx, "other", "c", []byte("3"))

	v, err := s.HGet(ctx, "h", "b")
	if err != nil || string(v) != "2" {
		t.Fatalf("HGet() = (%q, %v)", v, err)
	}
	all, err := s.HGetAll(ctx, "h")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || string(all["a"]) != "1" {
		t.Errorf("HGetAll() = %v", all)
	}
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
