package config

import (
	"context"
	"time"

	"github.com/compozy/dashscope/pkg/config/definition"
)

// Config is the complete configuration of the DashScope client and CLI.
type Config struct {
	DashScope DashScopeConfig `koanf:"dashscope" json:"dashscope" yaml:"dashscope" validate:"required"`
	Polling   PollingConfig   `koanf:"polling"   json:"polling"   yaml:"polling"   validate:"required"`
	Runtime   RuntimeConfig   `koanf:"runtime"   json:"runtime"   yaml:"runtime"`
	Batch     BatchConfig     `koanf:"batch"     json:"batch"     yaml:"batch"`
}

type DashScopeConfig struct {
	BaseURL        string          `koanf:"base_url"        json:"base_url"        yaml:"base_url"        validate:"required,url"`
	APIKey         SensitiveString `koanf:"api_key"         json:"api_key"         yaml:"api_key"`
	RequestTimeout time.Duration   `koanf:"request_timeout" json:"request_timeout" yaml:"request_timeout" validate:"min=0"`
	UserAgent      string          `koanf:"user_agent"      json:"user_agent"      yaml:"user_agent"`
}

// PollingConfig holds the default poll budgets. Nodes may override them per
// item.
type PollingConfig struct {
	ImageInterval    time.Duration `koanf:"image_interval"     json:"image_interval"     yaml:"image_interval"     validate:"min=0"`
	ImageMaxAttempts int           `koanf:"image_max_attempts" json:"image_max_attempts" yaml:"image_max_attempts" validate:"min=1"`
	VideoInterval    time.Duration `koanf:"video_interval"     json:"video_interval"     yaml:"video_interval"     validate:"min=0"`
	VideoMaxAttempts int           `koanf:"video_max_attempts" json:"video_max_attempts" yaml:"video_max_attempts" validate:"min=1"`
	MaxWait          time.Duration `koanf:"max_wait"           json:"max_wait"           yaml:"max_wait"           validate:"min=0"`
	TransportRetries int           `koanf:"transport_retries"  json:"transport_retries"  yaml:"transport_retries"  validate:"min=0,max=10"`
	RetryBackoff     time.Duration `koanf:"retry_backoff"      json:"retry_backoff"      yaml:"retry_backoff"      validate:"min=0"`
}

type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  json:"log_level"  yaml:"log_level"  validate:"oneof=debug info warn error disabled"`
	LogJSON   bool   `koanf:"log_json"   json:"log_json"   yaml:"log_json"`
	HTTPDebug bool   `koanf:"http_debug" json:"http_debug" yaml:"http_debug"`
}

type BatchConfig struct {
	Concurrency    int  `koanf:"concurrency"      json:"concurrency"      yaml:"concurrency"      validate:"min=1"`
	ContinueOnFail bool `koanf:"continue_on_fail" json:"continue_on_fail" yaml:"continue_on_fail"`
}

// Service loads and validates configuration.
type Service interface {
	// Load applies sources in order; later sources win.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	Validate(config *Config) error
	// GetSource reports which source provided the value at key.
	GetSource(key string) SourceType
}

// Source is one layer of configuration.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config holding the registry defaults.
func Default() *Config {
	registry := definition.CreateRegistry()
	return &Config{
		DashScope: DashScopeConfig{
			BaseURL:        getString(registry, "dashscope.base_url"),
			APIKey:         SensitiveString(getString(registry, "dashscope.api_key")),
			RequestTimeout: getDuration(registry, "dashscope.request_timeout"),
			UserAgent:      getString(registry, "dashscope.user_agent"),
		},
		Polling: PollingConfig{
			ImageInterval:    getDuration(registry, "polling.image_interval"),
			ImageMaxAttempts: getInt(registry, "polling.image_max_attempts"),
			VideoInterval:    getDuration(registry, "polling.video_interval"),
			VideoMaxAttempts: getInt(registry, "polling.video_max_attempts"),
			MaxWait:          getDuration(registry, "polling.max_wait"),
			TransportRetries: getInt(registry, "polling.transport_retries"),
			RetryBackoff:     getDuration(registry, "polling.retry_backoff"),
		},
		Runtime: RuntimeConfig{
			LogLevel:  getString(registry, "runtime.log_level"),
			LogJSON:   getBool(registry, "runtime.log_json"),
			HTTPDebug: getBool(registry, "runtime.http_debug"),
		},
		Batch: BatchConfig{
			Concurrency:    getInt(registry, "batch.concurrency"),
			ContinueOnFail: getBool(registry, "batch.continue_on_fail"),
		},
	}
}

func getString(registry *definition.Registry, path string) string {
	if s, ok := registry.GetDefault(path).(string); ok {
		return s
	}
	return ""
}

func getInt(registry *definition.Registry, path string) int {
	if i, ok := registry.GetDefault(path).(int); ok {
		return i
	}
	return 0
}

func getBool(registry *definition.Registry, path string) bool {
	if b, ok := registry.GetDefault(path).(bool); ok {
		return b
	}
	return false
}

func getDuration(registry *definition.Registry, path string) time.Duration {
	if d, ok := registry.GetDefault(path).(time.Duration); ok {
		return d
	}
	return 0
}
