package rerank

import (
	"math"
	"reflect"
	"testing"

	"github.com/rushteam/seqrec/core"
)

func ids(cs []core.ScoredCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ItemID
	}
	return out
}

func TestTopK(t *testing.T) {
	scored := []core.ScoredCandidate{
		{ItemID: "a", Score: 0.1},
		{ItemID: "b", Score: 0.9},
		{ItemID: "c", Score: 0.5},
		{ItemID: "d", Score: 0.9},
		{ItemID: "e", Score: 0.3},
	}

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{"top2", 2, []string{"b", "d"}},
		{"top3 ties keep input order", 3, []string{"b", "d", "c"}},
		{"k larger than input", 10, []string{"b", "d", "c", "e", "a"}},
		{"k zero", 0, nil},
		{"k negative", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopK(scored, tt.k)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("TopK() = %v, want nil", got)
				}
				return
			}
			if !reflect.DeepEqual(ids(got), tt.want) {
				t.Errorf("TopK() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestTopKDoesNotMutateInput(t *testing.T) {
	scored := []core.ScoredCandidate{
		{ItemID: "a", Score: 0.1},
		{ItemID: "b", Score: 0.9},
	}
	_ = TopK(scored, 2)
	if scored[0].ItemID != "a" || scored[1].ItemID != "b" {
		t.Errorf("input reordered: %v", ids(scored))
	}
}

func TestTopKNaNLast(t *testing.T) {
	scored := []core.ScoredCandidate{
		{ItemID: "nan", Score: math.NaN()},
		{ItemID: "low", Score: -5},
		{ItemID: "high", Score: 2},
	}
	got := ids(TopK(scored, 3))
	want := []string{"high", "low", "nan"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopK() = %v, want %v", got, want)
	}
}

func TestTopNNodeDefault(t *testing.T) {
	scored := make([]core.ScoredCandidate, 20)
	for i := range scored {
		scored[i] = core.ScoredCandidate{ItemID: string(rune('a' + i)), Score: float64(i)}
	}
	n := &TopNNode{}
	got := n.Apply(scored)
	if len(got) != core.DefaultTopN {
		t.Fatalf("len = %d, want %d", len(got), core.DefaultTopN)
	}
	if got[0].ItemID != "t" {
		t.Errorf("first = %s, want t", got[0].ItemID)
	}
}
