package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/seqrec/core"
)

// TFServingClient 是 TensorFlow Serving REST API 的客户端实现。
//
// 请求使用列式（columnar）格式：
//
//	{"signature_name": "serving_default", "inputs": {"users": [...], "item_history": [[...]], ...}}
//
// 响应兼容 {"outputs": [...]} 与 {"predictions": [...]} 两种形式，
// 每个元素可以是标量或单元素数组。
type TFServingClient struct {
	// Endpoint 服务端点，例如 "http://localhost:8501"
	Endpoint string

	// ModelName 模型名称
	ModelName string

	// ModelVersion 模型版本（可选，为空则使用最新版本）
	ModelVersion string

	// SignatureName 签名名称（可选，默认为 "serving_default"）
	SignatureName string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息
	Auth *AuthConfig

	// RawURL 为 true 时直接 POST 到 Endpoint，不拼接 /v1/models 路径（自定义服务）
	RawURL bool

	httpClient *http.Client
}

// NewTFServingClient 创建一个新的 TF Serving 客户端。
func NewTFServingClient(endpoint, modelName string, opts ...TFServingOption) *TFServingClient {
	client := &TFServingClient{
		Endpoint:      endpoint,
		ModelName:     modelName,
		SignatureName: "serving_default",
		Timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.Timeout}
	}
	return client
}

// TFServingOption TF Serving 客户端配置选项
type TFServingOption func(*TFServingClient)

// WithTFServingVersion 设置模型版本
func WithTFServingVersion(version string) TFServingOption {
	return func(c *TFServingClient) {
		c.ModelVersion = version
	}
}

// WithTFServingSignature 设置签名名称
func WithTFServingSignature(signatureName string) TFServingOption {
	return func(c *TFServingClient) {
		c.SignatureName = signatureName
	}
}

// WithTFServingTimeout 设置超时时间
func WithTFServingTimeout(timeout time.Duration) TFServingOption {
	return func(c *TFServingClient) {
		c.Timeout = timeout
	}
}

// WithTFServingAuth 设置认证信息
func WithTFServingAuth(auth *AuthConfig) TFServingOption {
	return func(c *TFServingClient) {
		c.Auth = auth
	}
}

// WithTFServingRawURL 直接使用 Endpoint 作为预测地址
func WithTFServingRawURL() TFServingOption {
	return func(c *TFServingClient) {
		c.RawURL = true
	}
}

// WithTFServingHTTPClient 替换底层 HTTP 客户端（测试或自定义 Transport）
func WithTFServingHTTPClient(hc *http.Client) TFServingOption {
	return func(c *TFServingClient) {
		c.httpClient = hc
	}
}

func (c *TFServingClient) modelURL() string {
	if c.ModelVersion != "" {
		return fmt.Sprintf("%s/v1/models/%s/versions/%s", c.Endpoint, c.ModelName, c.ModelVersion)
	}
	return fmt.Sprintf("%s/v1/models/%s", c.Endpoint, c.ModelName)
}

func (c *TFServingClient) predictURL() string {
	if c.RawURL {
		return c.Endpoint
	}
	return c.modelURL() + ":predict"
}

// Predict 实现 core.MLService 接口
func (c *TFServingClient) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if req == nil || len(req.Inputs) == 0 {
		return nil, fmt.Errorf("inputs are required")
	}

	body := map[string]any{"inputs": req.Inputs}
	signature := c.SignatureName
	if req.SignatureName != "" {
		signature = req.SignatureName
	}
	if signature != "" && !c.RawURL {
		body["signature_name"] = signature
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL(), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.addAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("tf serving error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
		if resp.StatusCode == http.StatusServiceUnavailable {
			return nil, fmt.Errorf("%w: %v", core.ErrScorerUnavailable, err)
		}
		return nil, err
	}

	var result struct {
		Predictions []any `json:"predictions"`
		Outputs     any   `json:"outputs,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	raw := result.Predictions
	if raw == nil {
		raw, err = outputsList(result.Outputs)
		if err != nil {
			return nil, err
		}
	}
	predictions, err := flattenPredictions(raw)
	if err != nil {
		return nil, err
	}

	return &core.MLPredictResponse{
		Predictions:  predictions,
		ModelVersion: c.ModelVersion,
	}, nil
}

// outputsList 把 columnar 响应的 outputs 转成列表；多输出模型必须只有一个输出。
func outputsList(outputs any) ([]any, error) {
	switch v := outputs.(type) {
	case nil:
		return nil, fmt.Errorf("response has neither predictions nor outputs")
	case []any:
		return v, nil
	case map[string]any:
		if len(v) != 1 {
			return nil, fmt.Errorf("expected a single named output, got %d", len(v))
		}
		for _, out := range v {
			return outputsList(out)
		}
	}
	return nil, fmt.Errorf("unexpected outputs type: %T", outputs)
}

func flattenPredictions(raw []any) ([]float64, error) {
	predictions := make([]float64, 0, len(raw))
	for _, pred := range raw {
		switch v := pred.(type) {
		case float64:
			predictions = append(predictions, v)
		case []any:
			if len(v) == 0 {
				return nil, fmt.Errorf("empty prediction row")
			}
			fv, ok := v[0].(float64)
			if !ok {
				return nil, fmt.Errorf("unexpected prediction element type: %T", v[0])
			}
			predictions = append(predictions, fv)
		default:
			return nil, fmt.Errorf("unexpected prediction type: %T", pred)
		}
	}
	return predictions, nil
}

// addAuth 添加认证信息到 HTTP 请求
func (c *TFServingClient) addAuth(req *http.Request) {
	if c.Auth == nil {
		return
	}
	switch c.Auth.Type {
	case "basic":
		req.SetBasicAuth(c.Auth.Username, c.Auth.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.Auth.Token)
	case "api_key":
		req.Header.Set("X-API-Key", c.Auth.APIKey)
	}
}

// Health 健康检查（模型状态接口）。自定义服务没有统一的状态接口，总是返回 nil。
func (c *TFServingClient) Health(ctx context.Context) error {
	if c.RawURL {
		return nil
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.addAuth(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// Close 关闭空闲连接
func (c *TFServingClient) Close(_ context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ core.MLService = (*TFServingClient)(nil)
