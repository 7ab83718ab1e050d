// Package config 加载应用配置（YAML + SEQREC_* 环境变量覆盖），并据此构建推理链路的各个组件。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/seqrec/logging"
	"github.com/rushteam/seqrec/pipeline"
	"github.com/rushteam/seqrec/service"
)

// Config 是应用的顶层配置。
type Config struct {
	Server   ServerConfig     `yaml:"server" json:"server"`
	Logging  logging.Config   `yaml:"logging" json:"logging"`
	Pipeline pipeline.Options `yaml:"pipeline" json:"pipeline"`
	Vocab    VocabConfig      `yaml:"vocab" json:"vocab"`
	Catalog  CatalogConfig    `yaml:"catalog" json:"catalog"`
	Redis    RedisConfig      `yaml:"redis" json:"redis"`
	Scorer   ScorerConfig     `yaml:"scorer" json:"scorer"`
	History  HistoryConfig    `yaml:"history" json:"history"`
	Filters  []FilterConfig   `yaml:"filters" json:"filters" validate:"dive"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// RequestTimeout 单个推荐请求的截止时间
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// VocabConfig 词表来源。file：三个 JSON/YAML 文件；store：Redis Hash（KeyPrefix + user/item/category）。
type VocabConfig struct {
	Source    string `yaml:"source" json:"source" validate:"oneof=file store"`
	User      string `yaml:"user" json:"user" validate:"required_if=Source file"`
	Item      string `yaml:"item" json:"item" validate:"required_if=Source file"`
	Category  string `yaml:"category" json:"category" validate:"required_if=Source file"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
}

// CatalogConfig 商品目录来源。file：TSV 文件；store：单个 key 下的 JSON 数组。
type CatalogConfig struct {
	Source string `yaml:"source" json:"source" validate:"oneof=file store"`
	Path   string `yaml:"path" json:"path" validate:"required_if=Source file"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=tsv interactions"`
	Key    string `yaml:"key" json:"key"`
}

// RedisConfig Redis 连接配置。Addr 为空时使用进程内存储。
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	PoolSize int    `yaml:"pool_size" json:"pool_size"`
}

// ScorerConfig 模型服务配置
type ScorerConfig struct {
	// Type rpc（{"inputs"} → {"scores"}）、tf_serving 或 custom
	Type          string              `yaml:"type" json:"type" validate:"oneof=rpc tf_serving custom"`
	Endpoint      string              `yaml:"endpoint" json:"endpoint" validate:"required,url"`
	ModelName     string              `yaml:"model_name" json:"model_name" validate:"required_if=Type tf_serving"`
	ModelVersion  string              `yaml:"model_version" json:"model_version"`
	SignatureName string              `yaml:"signature_name" json:"signature_name"`
	Timeout       time.Duration       `yaml:"timeout" json:"timeout"`
	Auth          *service.AuthConfig `yaml:"auth" json:"auth"`
	Breaker       BreakerConfig       `yaml:"breaker" json:"breaker"`
}

// BreakerConfig 熔断器配置
type BreakerConfig struct {
	Enabled             bool          `yaml:"enabled" json:"enabled"`
	MaxRequests         uint32        `yaml:"max_requests" json:"max_requests"`
	Interval            time.Duration `yaml:"interval" json:"interval"`
	Timeout             time.Duration `yaml:"timeout" json:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" json:"consecutive_failures"`
}

// HistoryConfig 用户历史来源（请求没有携带历史时使用）。Source 为空表示不补全历史。
type HistoryConfig struct {
	Source    string      `yaml:"source" json:"source" validate:"omitempty,oneof=store feast"`
	KeyPrefix string      `yaml:"key_prefix" json:"key_prefix"`
	MaxEvents int         `yaml:"max_events" json:"max_events" validate:"gte=0"`
	Feast     FeastConfig `yaml:"feast" json:"feast"`

	// FallbackToStore Feast 不可用时降级读取 Store 中的历史
	FallbackToStore bool               `yaml:"fallback_to_store" json:"fallback_to_store"`
	Cache           HistoryCacheConfig `yaml:"cache" json:"cache"`
}

// HistoryCacheConfig 进程内历史缓存
type HistoryCacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Size    int           `yaml:"size" json:"size" validate:"gte=0"`
	TTL     time.Duration `yaml:"ttl" json:"ttl" validate:"gte=0"`
}

// FeastConfig Feast 在线特征配置
type FeastConfig struct {
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	Project        string        `yaml:"project" json:"project"`
	FeatureView    string        `yaml:"feature_view" json:"feature_view"`
	EntityKey      string        `yaml:"entity_key" json:"entity_key"`
	WithCategories bool          `yaml:"with_categories" json:"with_categories"`
	Token          string        `yaml:"token" json:"token"`
	TLS            bool          `yaml:"tls" json:"tls"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout"`
}

// FilterConfig 单个候选规则的配置，Type 为注册过的规则类型。
type FilterConfig struct {
	Type   string         `yaml:"type" json:"type" validate:"required"`
	Config map[string]any `yaml:"config" json:"config"`
}

var validate = validator.New()

// Load 读取 YAML 配置文件（path 为空时只使用默认值），应用环境变量覆盖并校验。
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("invalid config: pipeline: %w", err)
	}
	if c.History.Source == "feast" && (c.History.Feast.Host == "" || c.History.Feast.FeatureView == "") {
		return fmt.Errorf("invalid config: history.feast requires host and feature_view")
	}
	if c.Catalog.Source == "store" && c.Catalog.Key == "" {
		return fmt.Errorf("invalid config: catalog.key is required for store source")
	}
	return nil
}

// Default 返回本地开发用的默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Pipeline: pipeline.DefaultOptions(),
		Vocab: VocabConfig{
			Source:    "file",
			KeyPrefix: "seqrec:vocab:",
		},
		Catalog: CatalogConfig{
			Source: "file",
			Format: "tsv",
			Key:    "seqrec:catalog",
		},
		Redis: RedisConfig{
			PoolSize: 10,
		},
		Scorer: ScorerConfig{
			Type:    "rpc",
			Timeout: 5 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:         1,
				Timeout:             30 * time.Second,
				ConsecutiveFailures: 5,
			},
		},
		History: HistoryConfig{
			KeyPrefix: "seqrec:history:",
			Cache: HistoryCacheConfig{
				Size: 10000,
				TTL:  30 * time.Second,
			},
			Feast: FeastConfig{
				Port:      6565,
				EntityKey: "user_id",
				Timeout:   time.Second,
			},
		},
	}
}

// applyEnvOverrides 读取 SEQREC_* 环境变量并覆盖对应字段
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEQREC_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SEQREC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SEQREC_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SEQREC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SEQREC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SEQREC_SCORER_TYPE"); v != "" {
		cfg.Scorer.Type = v
	}
	if v := os.Getenv("SEQREC_SCORER_ENDPOINT"); v != "" {
		cfg.Scorer.Endpoint = v
	}
	if v := os.Getenv("SEQREC_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("SEQREC_PIPELINE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.BatchSize = n
		}
	}
	if v := os.Getenv("SEQREC_PIPELINE_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pipeline.TopN = n
		}
	}
	if v := os.Getenv("SEQREC_PIPELINE_PIPELINED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pipeline.Pipelined = b
		}
	}
	if v := os.Getenv("SEQREC_FEAST_HOST"); v != "" {
		cfg.History.Feast.Host = v
	}
}
