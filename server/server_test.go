package server

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/seqrec/core"
)

type fakeRecommender struct {
	err      error
	readyErr error
	requests []*core.Request
}

func (f *fakeRecommender) Recommend(_ context.Context, req *core.Request) (*core.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &core.Response{Items: []string{"B", "C"}, Preds: []float64{0.9, 0.5}}, nil
}

func (f *fakeRecommender) Ready(context.Context) error { return f.readyErr }

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRecommend(t *testing.T) {
	fake := &fakeRecommender{}
	s := New(fake, Options{}, zerolog.Nop())

	rec := do(t, s, http.MethodPost, "/v1/recommend",
		`{"userId": "u1", "itemIds": ["A"], "timestamps": [1700000000], "topN": 2, "now": 1700086400}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp core.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 || resp.Items[0] != "B" || resp.Preds[0] != 0.9 {
		t.Errorf("response = %+v", resp)
	}

	got := fake.requests[0]
	if got.UserID != "u1" || got.TopN != 2 || got.Now.Unix() != 1700086400 {
		t.Errorf("request = %+v", got)
	}
	if got.CategoryIDs != nil {
		t.Errorf("CategoryIDs = %v, want nil", got.CategoryIDs)
	}
}

func TestRecommendErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("encoding: %w", core.ErrEmptyHistory), http.StatusBadRequest},
		{"unavailable", core.ErrScorerUnavailable, http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("scoring: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"integration error", core.ErrScoreCountMismatch, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeRecommender{err: tt.err}, Options{}, zerolog.Nop())
			rec := do(t, s, http.MethodPost, "/v1/recommend", `{"userId": "u1"}`)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("error body = %s", rec.Body)
			}
		})
	}
}

func TestRecommendBadBody(t *testing.T) {
	fake := &fakeRecommender{}
	s := New(fake, Options{}, zerolog.Nop())
	rec := do(t, s, http.MethodPost, "/v1/recommend", `{"userId": `)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(fake.requests) != 0 {
		t.Error("recommender called for malformed body")
	}
}

func TestInvocations(t *testing.T) {
	fake := &fakeRecommender{}
	s := New(fake, Options{}, zerolog.Nop())

	rec := do(t, s, http.MethodPost, "/invocations", `{"inputs": {
		"userId": ["u1", "u2"],
		"itemIds": [["A"], ["B", "C"]],
		"timestamps": [[1.0], [1.0, 2.0]],
		"categoryIds": [["cat1"], ["cat1", "cat2"]]
	}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var out InvocationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Predictions) != 2 {
		t.Errorf("predictions = %d, want 2", len(out.Predictions))
	}
	if len(fake.requests) != 2 || fake.requests[1].UserID != "u2" || len(fake.requests[1].CategoryIDs) != 2 {
		t.Errorf("requests = %+v", fake.requests)
	}
}

func TestInvocationsStringTimestamps(t *testing.T) {
	fake := &fakeRecommender{}
	s := New(fake, Options{}, zerolog.Nop())

	rec := do(t, s, http.MethodPost, "/invocations", `{"inputs": {
		"userId": ["u"],
		"itemIds": [["A", "B"]],
		"timestamps": [["1700000000", 1700003600.5]]
	}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	got := fake.requests[0].Timestamps
	if len(got) != 2 || got[0] != 1700000000 || got[1] != 1700003600.5 {
		t.Errorf("Timestamps = %v", got)
	}
}

func TestTimestampRejectsNonNumeric(t *testing.T) {
	bodies := []string{
		`{"userId": "u1", "itemIds": ["A"], "timestamps": ["yesterday"]}`,
		`{"userId": "u1", "itemIds": ["A"], "timestamps": ["NaN"]}`,
		`{"userId": "u1", "itemIds": ["A"], "timestamps": [true]}`,
	}
	for _, body := range bodies {
		fake := &fakeRecommender{}
		rec := do(t, New(fake, Options{}, zerolog.Nop()), http.MethodPost, "/v1/recommend", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		if len(fake.requests) != 0 {
			t.Errorf("body %s: recommender called", body)
		}
	}
}

func TestRecommendStringTimestamps(t *testing.T) {
	fake := &fakeRecommender{}
	s := New(fake, Options{}, zerolog.Nop())
	rec := do(t, s, http.MethodPost, "/v1/recommend", `{"userId": "u1", "itemIds": ["A"], "timestamps": [" 1700000000 "]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := fake.requests[0].Timestamps; len(got) != 1 || got[0] != 1700000000 {
		t.Errorf("Timestamps = %v", got)
	}
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	s := New(&fakeRecommender{}, Options{}, zerolog.New(&logs))

	rec := httptest.NewRecorder()
	s.writeJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]float64{"score": math.NaN()})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Errorf("error body = %q", rec.Body)
	}
	if !strings.Contains(logs.String(), "encode response failed") {
		t.Errorf("logs = %q, want encode failure", logs.String())
	}
}

func TestInvocationsShape(t *testing.T) {
	bodies := []string{
		`{"inputs": {}}`,
		`{"inputs": {"userId": ["u1", "u2"], "itemIds": [["A"]], "timestamps": [[1.0]]}}`,
		`{"inputs": {"userId": ["u1"], "itemIds": [["A"]], "timestamps": [[1.0]], "categoryIds": []}}`,
	}
	for _, body := range bodies {
		fake := &fakeRecommender{}
		rec := do(t, New(fake, Options{}, zerolog.Nop()), http.MethodPost, "/invocations", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		if len(fake.requests) != 0 {
			t.Errorf("body %s: recommender called", body)
		}
	}
}

func TestHealth(t *testing.T) {
	fake := &fakeRecommender{}
	s := New(fake, Options{}, zerolog.Nop())

	if rec := do(t, s, http.MethodGet, "/health/live", ""); rec.Code != http.StatusOK {
		t.Errorf("live status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("ready status = %d", rec.Code)
	}
	fake.readyErr = core.ErrScorerUnavailable
	if rec := do(t, s, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d, want 503", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/v1/recommend", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/recommend status = %d, want 405", rec.Code)
	}
}
