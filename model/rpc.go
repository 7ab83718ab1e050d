package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/seqrec/batch"
	"github.com/rushteam/seqrec/core"
)

// RPCScorer 通过 HTTP 调用外部模型服务对批次打分。
type RPCScorer struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080/score"
	Timeout  time.Duration
	Client   *http.Client
}

func NewRPCScorer(name, endpoint string, timeout time.Duration) *RPCScorer {
	if timeout == 0 {
		timeout = core.DefaultScoreTimeout
	}
	return &RPCScorer{
		name:     name,
		Endpoint: endpoint,
		Timeout:  timeout,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (m *RPCScorer) Name() string {
	return m.name
}

// Score 调用远程模型服务进行批量打分。
// 请求格式（JSON）：
//
//	{"inputs": {"users": [1, 2], "items": [5, 6], "item_history": [[3, 4], [3, 4]], ...}}
//
// 响应格式（JSON）：
//
//	{"scores": [0.85, 0.72]}
func (m *RPCScorer) Score(ctx context.Context, b *batch.Batch) ([]float64, error) {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: m.Timeout}
	}
	if b.Len() == 0 {
		return []float64{}, nil
	}

	jsonData, err := json.Marshal(map[string]any{
		"inputs": b.Tensors().Inputs(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("rpc error: status=%d, read body failed: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := CheckCount(b, result.Scores); err != nil {
		return nil, err
	}
	return result.Scores, nil
}
