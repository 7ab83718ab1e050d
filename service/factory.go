package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rushteam/seqrec/core"
)

// NewMLService 根据配置创建 MLService 实例（工厂方法）。
func NewMLService(config *ServiceConfig) (core.MLService, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opts := []TFServingOption{WithTFServingTimeout(timeout)}
	if config.ModelVersion != "" {
		opts = append(opts, WithTFServingVersion(config.ModelVersion))
	}
	if config.SignatureName != "" {
		opts = append(opts, WithTFServingSignature(config.SignatureName))
	}
	if config.Auth != nil {
		opts = append(opts, WithTFServingAuth(config.Auth))
	}

	switch config.Type {
	case ServiceTypeTFServing, "":
		return NewTFServingClient(config.Endpoint, config.ModelName, opts...), nil
	case ServiceTypeCustom:
		opts = append(opts, WithTFServingRawURL())
		return NewTFServingClient(config.Endpoint, config.ModelName, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported service type: %s", config.Type)
	}
}

// ValidateConfig 验证服务配置
func ValidateConfig(config *ServiceConfig) error {
	if config == nil {
		return fmt.Errorf("service config is required")
	}
	if config.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if !hasHTTPPrefix(config.Endpoint) {
		return fmt.Errorf("endpoint must be an http(s) url: %s", config.Endpoint)
	}
	if config.ModelName == "" && config.Type != ServiceTypeCustom {
		return fmt.Errorf("model name is required")
	}
	return nil
}

func hasHTTPPrefix(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// TestConnection 测试服务连接
func TestConnection(ctx context.Context, svc core.MLService) error {
	if svc == nil {
		return fmt.Errorf("service is nil")
	}
	return svc.Health(ctx)
}
