package heartbeat

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/harunnryd/heartbeat/pkg/configutil"
	"github.com/harunnryd/heartbeat/pkg/sinks"
)

// FileConfig is the on-disk configuration of a host embedding an Aggregator.
type FileConfig struct {
	Heartbeat       Config        `mapstructure:"heartbeat"`
	Sink            SinkConfig    `mapstructure:"sink"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	Privacy         PrivacyConfig `mapstructure:"privacy"`
}

type SinkConfig struct {
	Provider string         `mapstructure:"provider"`
	Settings map[string]any `mapstructure:"settings"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
}

// BreakerConfig wraps the sink in a circuit breaker when Threshold is positive.
type BreakerConfig struct {
	Threshold int           `mapstructure:"threshold"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
}

type PrivacyConfig struct {
	RedactPII bool `mapstructure:"redact_pii"`
}

func LoadConfig(path string) (FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("heartbeat.max_buffer_time", DefaultMaxBufferTime)
	v.SetDefault("heartbeat.max_props_count", DefaultMaxPropsCount)
	v.SetDefault("heartbeat.max_aggregated_value", DefaultMaxAggregatedValue)
	v.SetDefault("heartbeat.enable_logging", false)
	v.SetDefault("sink.provider", "log")
	v.SetDefault("sink.breaker.threshold", 0)
	v.SetDefault("sink.breaker.cooldown", 30*time.Second)
	v.SetDefault("delivery_timeout", 5*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("privacy.redact_pii", true)

	if err := v.ReadInConfig(); err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return FileConfig{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.Sink.Settings = configutil.ExpandEnv(cfg.Sink.Settings)

	if err := cfg.Validate(); err != nil {
		return FileConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *FileConfig) Validate() error {
	if strings.TrimSpace(c.Sink.Provider) == "" {
		return fmt.Errorf("sink.provider is required")
	}
	if c.Heartbeat.MaxBufferTime < 0 {
		return fmt.Errorf("heartbeat.max_buffer_time must not be negative")
	}
	if c.Heartbeat.MaxPropsCount < 0 {
		return fmt.Errorf("heartbeat.max_props_count must not be negative")
	}
	if c.Heartbeat.MaxAggregatedValue < 0 {
		return fmt.Errorf("heartbeat.max_aggregated_value must not be negative")
	}
	if c.Sink.Breaker.Threshold < 0 {
		return fmt.Errorf("sink.breaker.threshold must not be negative")
	}
	return nil
}

// Build resolves the configured provider in reg and applies the breaker.
func (c SinkConfig) Build(reg *sinks.Registry) (sinks.Sink, error) {
	s, err := reg.Build(c.Provider, c.Settings)
	if err != nil {
		return nil, err
	}
	if c.Breaker.Threshold > 0 {
		return sinks.NewBreaker(s, c.Breaker.Threshold, c.Breaker.Cooldown), nil
	}
	return s, nil
}
