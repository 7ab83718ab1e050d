// Package feast 封装 Feast Feature Store 的在线特征读取。
//
// 推理链路只用到在线特征：当请求没有携带用户历史时，
// history.FeastProvider 通过 Client 读取用户的历史物品与时间戳列表。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast 在线特征读取的接口。
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时预测）
	//
	// 参数：
	//   - Features: 特征名称列表，例如 ["user_history:item_ids", "user_history:timestamps"]
	//   - EntityRows: 实体行，例如 [{"user_id": "u1"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	Features   []string
	EntityRows []map[string]any

	// Project 项目名称（可选，默认使用客户端的项目）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值：标量为 string / float64，列表为 []string / []float64
	Values map[string]any

	// EntityRow 对应的实体行
	EntityRow map[string]any
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration
	Auth     *AuthConfig
	TLS      bool
}

// AuthConfig 认证配置
type AuthConfig struct {
	// Type 认证类型，目前只支持 static（gRPC 静态 Token）
	Type  string `yaml:"type" json:"type"`
	Token string `yaml:"token" json:"token"`
}

// WithTimeout 设置单次调用的超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 设置认证信息
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}

// WithTLS 启用 TLS（仅在配置了认证时生效）
func WithTLS() ClientOption {
	return func(c *ClientConfig) {
		c.TLS = true
	}
}
