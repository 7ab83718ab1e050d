package server

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/seqrec/core"
)

// Timestamp 是 Unix 秒，既接受 JSON 数字也接受数字字符串（如 "1700000000"）。
type Timestamp float64

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v float64
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("timestamp %q is not a number", s)
		}
		v = f
	} else if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("timestamp %v is not finite", v)
	}
	*t = Timestamp(v)
	return nil
}

func toSeconds(ts []Timestamp) []float64 {
	if ts == nil {
		return nil
	}
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = float64(t)
	}
	return out
}

// RecommendRequest 是 /v1/recommend 的请求体
type RecommendRequest struct {
	UserID      string      `json:"userId"`
	ItemIDs     []string    `json:"itemIds"`
	Timestamps  []Timestamp `json:"timestamps"`
	CategoryIDs []string    `json:"categoryIds,omitempty"`
	TopN        int         `json:"topN,omitempty"`
	// Now 参考时间（Unix 秒，可选）
	Now float64 `json:"now,omitempty"`
}

func (r *RecommendRequest) toCore() *core.Request {
	req := &core.Request{
		UserID:      r.UserID,
		ItemIDs:     r.ItemIDs,
		Timestamps:  toSeconds(r.Timestamps),
		CategoryIDs: r.CategoryIDs,
		TopN:        r.TopN,
	}
	if r.Now > 0 {
		req.Now = time.Unix(0, int64(r.Now*float64(time.Second)))
	}
	return req
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var body RecommendRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	resp, err := s.rec.Recommend(ctx, body.toCore())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// InvocationsRequest 是 /invocations 的请求体（列式输入，每行一个用户）。
//
//	{"inputs": {"userId": ["u1"], "itemIds": [["a", "b"]], "timestamps": [["1700000000", "1700003600"]]}}
//
// timestamps 中的元素可以是数字或数字字符串。
type InvocationsRequest struct {
	Inputs struct {
		UserID      []string      `json:"userId"`
		ItemIDs     [][]string    `json:"itemIds"`
		Timestamps  [][]Timestamp `json:"timestamps"`
		CategoryIDs [][]string    `json:"categoryIds,omitempty"`
	} `json:"inputs"`
}

// InvocationsResponse 是 /invocations 的响应体，predictions 与输入行一一对应。
type InvocationsResponse struct {
	Predictions []*core.Response `json:"predictions"`
}

var errInvocationsShape = core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
	"inputs.userId, inputs.itemIds and inputs.timestamps must have the same number of rows")

func (s *Server) handleInvocations(w http.ResponseWriter, r *http.Request) {
	var body InvocationsRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	in := body.Inputs
	n := len(in.UserID)
	if n == 0 || len(in.ItemIDs) != n || len(in.Timestamps) != n ||
		(in.CategoryIDs != nil && len(in.CategoryIDs) != n) {
		s.writeError(w, r, errInvocationsShape)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	out := InvocationsResponse{Predictions: make([]*core.Response, 0, n)}
	for i := 0; i < n; i++ {
		req := &core.Request{
			UserID:     in.UserID[i],
			ItemIDs:    in.ItemIDs[i],
			Timestamps: toSeconds(in.Timestamps[i]),
		}
		if in.CategoryIDs != nil {
			req.CategoryIDs = in.CategoryIDs[i]
		}
		resp, err := s.rec.Recommend(ctx, req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out.Predictions = append(out.Predictions, resp)
	}
	s.writeJSON(w, r, http.StatusOK, out)
}
