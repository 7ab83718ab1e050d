package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
)

type errFilter struct{}

func (errFilter) Name() string { return "filter.err" }

func (errFilter) ShouldFilter(context.Context, *core.Request, catalog.Entry) (bool, error) {
	return false, errors.New("boom")
}

func TestChainMatch(t *testing.T) {
	ctx := context.Background()
	req := &core.Request{UserID: "u1", ItemIDs: []string{"A"}, CategoryIDs: []string{"cat1"}}

	expr, err := NewExprFilter(`item.category == "cat3"`)
	if err != nil {
		t.Fatal(err)
	}
	var reported []string
	chain := &Chain{
		Filters: []Filter{
			errFilter{},
			NewBlacklistFilter([]string{"X"}, []string{"cat9"}),
			&HistoryFilter{},
			expr,
		},
		OnError: func(f Filter, _ catalog.Entry, _ error) {
			reported = append(reported, f.Name())
		},
	}

	tests := []struct {
		name     string
		cand     catalog.Entry
		wantName string
		wantHit  bool
	}{
		{"blacklisted item", catalog.Entry{ItemID: "X", CategoryID: "cat1"}, "filter.blacklist", true},
		{"blacklisted category", catalog.Entry{ItemID: "Y", CategoryID: "cat9"}, "filter.blacklist", true},
		{"item in history", catalog.Entry{ItemID: "A", CategoryID: "cat1"}, "filter.history", true},
		{"expr match", catalog.Entry{ItemID: "C", CategoryID: "cat3"}, "filter.expr", true},
		{"kept", catalog.Entry{ItemID: "B", CategoryID: "cat1"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, hit := chain.Match(ctx, req, tt.cand)
			if name != tt.wantName || hit != tt.wantHit {
				t.Errorf("Match() = (%q, %v), want (%q, %v)", name, hit, tt.wantName, tt.wantHit)
			}
		})
	}
	if len(reported) != len(tests) {
		t.Errorf("OnError called %d times, want %d", len(reported), len(tests))
	}
}

func TestNilChain(t *testing.T) {
	var c *Chain
	if _, hit := c.Match(context.Background(), &core.Request{}, catalog.Entry{ItemID: "A"}); hit {
		t.Error("nil chain should never match")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d", c.Len())
	}
}
