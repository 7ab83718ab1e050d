package model

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/feature"
)

func testBatch(ids ...string) *batch.Batch {
	b := &batch.Batch{}
	for i, id := range ids {
		b.ItemIDs = append(b.ItemIDs, id)
		b.Records = append(b.Records, &feature.CandidateRecord{
			UserIndex:       1,
			ItemIndex:       i + 1,
			CategoryIndex:   1,
			ItemHistory:     []int{1, 2},
			CategoryHistory: []int{1, 1},
			TimeDiff:        []float64{0, 0},
			TimeFromFirst:   []float64{0, 0},
			TimeToNow:       []float64{0, 0},
		})
	}
	return b
}

func TestCheckCount(t *testing.T) {
	b := testBatch("A", "B")
	if err := CheckCount(b, []float64{1, 2}); err != nil {
		t.Errorf("CheckCount() error = %v", err)
	}
	if err := CheckCount(b, []float64{1}); !errors.Is(err, core.ErrScoreCountMismatch) {
		t.Errorf("CheckCount() error = %v, want ErrScoreCountMismatch", err)
	}
}

func TestCheckScores(t *testing.T) {
	b := testBatch("A", "B")
	tests := []struct {
		name   string
		scores []float64
		want   error
	}{
		{"finite", []float64{0.1, -3}, nil},
		{"short", []float64{0.1}, core.ErrScoreCountMismatch},
		{"nan", []float64{0.5, math.NaN()}, core.ErrNonFiniteScore},
		{"inf", []float64{math.Inf(1), 0.5}, core.ErrNonFiniteScore},
		{"negative inf", []float64{0.5, math.Inf(-1)}, core.ErrNonFiniteScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckScores(b, tt.scores)
			if tt.want == nil {
				if err != nil {
					t.Errorf("CheckScores() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckScores() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRPCScorer(t *testing.T) {
	var gotInputs map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Inputs map[string]json.RawMessage `json:"inputs"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotInputs = req.Inputs
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"scores": [0.9, 0.1]}`))
	}))
	defer srv.Close()

	s := NewRPCScorer("rpc", srv.URL, time.Second)
	scores, err := s.Score(context.Background(), testBatch("A", "B"))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if !reflect.DeepEqual(scores, []float64{0.9, 0.1}) {
		t.Errorf("Score() = %v", scores)
	}
	if string(gotInputs["items"]) != "[1,2]" {
		t.Errorf("items input = %s", gotInputs["items"])
	}
	if _, ok := gotInputs["time_to_now"]; !ok {
		t.Error("time_to_now input missing")
	}
}

func TestRPCScorerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"count mismatch", http.StatusOK, `{"scores": [0.9]}`, core.ErrScoreCountMismatch},
		{"server error", http.StatusInternalServerError, `boom`, nil},
		{"bad json", http.StatusOK, `{`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewRPCScorer("rpc", srv.URL, time.Second).Score(context.Background(), testBatch("A", "B"))
			if err == nil {
				t.Fatal("Score() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Score() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

type fakeService struct {
	predictions []float64
	err         error
	got         *core.MLPredictRequest
}

func (f *fakeService) Predict(_ context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &core.MLPredictResponse{Predictions: f.predictions}, nil
}

func (f *fakeService) Health(context.Context) error { return f.err }
func (f *fakeService) Close(context.Context) error  { return nil }

func TestServiceScorer(t *testing.T) {
	svc := &fakeService{predictions: []float64{0.3, 0.7}}
	s := NewServiceScorer(svc, "slirec")
	s.SignatureName = "serving_default"

	if s.Name() != "model.service.slirec" {
		t.Errorf("Name() = %q", s.Name())
	}
	scores, err := s.Score(context.Background(), testBatch("A", "B"))
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if !reflect.DeepEqual(scores, []float64{0.3, 0.7}) {
		t.Errorf("Score() = %v", scores)
	}
	if svc.got.ModelName != "slirec" || svc.got.SignatureName != "serving_default" {
		t.Errorf("request = %+v", svc.got)
	}

	svc.predictions = []float64{0.3}
	if _, err := s.Score(context.Background(), testBatch("A", "B")); !errors.Is(err, core.ErrScoreCountMismatch) {
		t.Errorf("Score() error = %v, want ErrScoreCountMismatch", err)
	}
}

func TestBreakerScorerOpens(t *testing.T) {
	calls := 0
	failing := &FuncScorer{Fn: func(context.Context, *batch.Batch) ([]float64, error) {
		calls++
		return nil, errors.New("connection refused")
	}}
	s := NewBreakerScorer(failing, BreakerOptions{ConsecutiveFailures: 2, Timeout: time.Minute}, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := s.Score(context.Background(), testBatch("A")); err == nil || core.IsUnavailable(err) {
			t.Fatalf("call %d error = %v, want plain failure", i, err)
		}
	}
	if s.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", s.State())
	}
	_, err := s.Score(context.Background(), testBatch("A"))
	if !errors.Is(err, core.ErrScorerUnavailable) {
		t.Errorf("Score() error = %v, want ErrScorerUnavailable", err)
	}
	if calls != 2 {
		t.Errorf("underlying scorer called %d times, want 2", calls)
	}
	if err := s.Health(context.Background()); !errors.Is(err, core.ErrScorerUnavailable) {
		t.Errorf("Health() = %v", err)
	}
}

func TestBreakerScorerIgnoresMismatch(t *testing.T) {
	mismatched := &FuncScorer{Fn: func(_ context.Context, b *batch.Batch) ([]float64, error) {
		return nil, CheckCount(b, nil)
	}}
	s := NewBreakerScorer(mismatched, BreakerOptions{ConsecutiveFailures: 1}, zerolog.Nop())
	for i := 0; i < 3; i++ {
		if _, err := s.Score(context.Background(), testBatch("A")); !errors.Is(err, core.ErrScoreCountMismatch) {
			t.Fatalf("Score() error = %v", err)
		}
	}
	if s.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", s.State())
	}
}

func TestBreakerScorerPassThrough(t *testing.T) {
	ok := &FuncScorer{ScorerName: "ok", Fn: func(context.Context, *batch.Batch) ([]float64, error) {
		return []float64{1}, nil
	}}
	s := NewBreakerScorer(ok, BreakerOptions{}, zerolog.Nop())
	scores, err := s.Score(context.Background(), testBatch("A"))
	if err != nil || !reflect.DeepEqual(scores, []float64{1}) {
		t.Errorf("Score() = (%v, %v)", scores, err)
	}
	if s.Name() != "ok" {
		t.Errorf("Name() = %q", s.Name())
	}
	if err := s.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v", err)
	}
}
