package server

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/model"
	"github.com/rushteam/seqrec/pipeline"
	"github.com/rushteam/seqrec/vocab"
)

func newPipeline(t *testing.T, scorer model.Scorer) *pipeline.Pipeline {
	t.Helper()
	mustNew := func(m map[string]int) *vocab.Vocabulary {
		v, err := vocab.New(m)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
	p, err := pipeline.New(pipeline.Deps{
		Vocab: &vocab.Set{
			User:     mustNew(map[string]int{"u1": 1}),
			Item:     mustNew(map[string]int{"A": 1, "B": 2}),
			Category: mustNew(map[string]int{"cat1": 1}),
		},
		Catalog: catalog.NewBuilder().Add("A", "cat1").Add("B", "cat1").Build(),
		Scorer:  scorer,
		Clock:   func() time.Time { return time.Unix(1_700_086_400, 0) },
		Logger:  zerolog.Nop(),
	}, pipeline.Options{BatchSize: 2, TopN: 2})
	if err != nil {
		t.Fatalf("pipeline.New() error = %v", err)
	}
	return p
}

func TestRecommendThroughPipeline(t *testing.T) {
	scorer := &model.FuncScorer{Fn: func(_ context.Context, b *batch.Batch) ([]float64, error) {
		return []float64{0.5, 0.7}[:b.Len()], nil
	}}
	s := New(newPipeline(t, scorer), Options{}, zerolog.Nop())

	rec := do(t, s, http.MethodPost, "/v1/recommend", `{"userId": "u1", "itemIds": ["A"], "timestamps": ["1700000000"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp core.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 || resp.Items[0] != "B" || resp.Items[1] != "A" {
		t.Errorf("Items = %v, want [B A]", resp.Items)
	}
}

func TestRecommendNonFiniteScore(t *testing.T) {
	scorer := &model.FuncScorer{Fn: func(_ context.Context, b *batch.Batch) ([]float64, error) {
		return []float64{0.5, math.NaN()}[:b.Len()], nil
	}}
	var logs bytes.Buffer
	s := New(newPipeline(t, scorer), Options{}, zerolog.New(&logs))

	rec := do(t, s, http.MethodPost, "/v1/recommend", `{"userId": "u1", "itemIds": ["A"], "timestamps": [1700000000]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body = %q: %v", rec.Body, err)
	}
	if !strings.Contains(body.Error, core.ErrNonFiniteScore.Error()) {
		t.Errorf("error = %q, want non-finite score", body.Error)
	}
	if !strings.Contains(logs.String(), "request failed") {
		t.Errorf("logs = %q, want request failure", logs.String())
	}
}
