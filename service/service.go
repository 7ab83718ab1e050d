// Package service 实现 core.MLService，对接外部模型服务。
package service

import "time"

// ServiceType 服务类型
type ServiceType string

const (
	ServiceTypeTFServing ServiceType = "tf_serving" // TensorFlow Serving REST
	ServiceTypeCustom    ServiceType = "custom"     // 自定义 HTTP 服务（与 TF Serving 同构的 JSON 协议）
)

// ServiceConfig 服务配置
type ServiceConfig struct {
	// Type 服务类型
	Type ServiceType `yaml:"type" json:"type"`

	// Endpoint 服务端点
	// TF Serving: "http://localhost:8501"
	// Custom: "http://localhost:8080/predict"
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// ModelName 模型名称
	ModelName string `yaml:"model_name" json:"model_name"`

	// ModelVersion 模型版本
	ModelVersion string `yaml:"model_version" json:"model_version"`

	// SignatureName 签名名称（TF Serving）
	SignatureName string `yaml:"signature_name" json:"signature_name"`

	// Timeout 请求超时（<= 0 时为 30s）
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Auth 认证信息（可选）
	Auth *AuthConfig `yaml:"auth" json:"auth"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	Type     string `yaml:"type" json:"type"` // "basic", "bearer", "api_key"
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	Token    string `yaml:"token" json:"token"`
	APIKey   string `yaml:"api_key" json:"api_key"`
}
