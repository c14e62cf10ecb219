package heartbeat

import (
	"time"

	"github.com/harunnryd/heartbeat/pkg/configutil"
)

const (
	DefaultMaxBufferTime      = 30 * time.Second
	DefaultMaxPropsCount      = 50
	DefaultMaxAggregatedValue = 100000
)

// Config tunes one Aggregator. Limits that are zero or negative fall back to
// their defaults.
type Config struct {
	// MaxBufferTime is the inactivity window after the last heartbeat for a
	// key before its record is flushed.
	MaxBufferTime time.Duration `mapstructure:"max_buffer_time"`
	// MaxPropsCount flushes a record once it holds this many properties.
	MaxPropsCount int `mapstructure:"max_props_count"`
	// MaxAggregatedValue flushes a record once any top-level number reaches
	// this magnitude.
	MaxAggregatedValue float64 `mapstructure:"max_aggregated_value"`
	// EnableLogging turns on the debug trace.
	EnableLogging bool `mapstructure:"enable_logging"`
	// OnFlush is called after every flush attempt, failed deliveries included.
	OnFlush func(FlushEvent) `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		MaxBufferTime:      DefaultMaxBufferTime,
		MaxPropsCount:      DefaultMaxPropsCount,
		MaxAggregatedValue: DefaultMaxAggregatedValue,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxBufferTime <= 0 {
		c.MaxBufferTime = DefaultMaxBufferTime
	}
	if c.MaxPropsCount <= 0 {
		c.MaxPropsCount = DefaultMaxPropsCount
	}
	if c.MaxAggregatedValue <= 0 {
		c.MaxAggregatedValue = DefaultMaxAggregatedValue
	}
	return c
}

// ConfigPatch is a partial update. Nil fields leave the current value alone.
// ClearOnFlush removes the installed callback; a non-nil OnFlush in the same
// patch replaces it instead.
type ConfigPatch struct {
	MaxBufferTime      *time.Duration   `mapstructure:"max_buffer_time"`
	MaxPropsCount      *int             `mapstructure:"max_props_count"`
	MaxAggregatedValue *float64         `mapstructure:"max_aggregated_value"`
	EnableLogging      *bool            `mapstructure:"enable_logging"`
	OnFlush            func(FlushEvent) `mapstructure:"-"`
	ClearOnFlush       bool             `mapstructure:"-"`
}

func (c Config) apply(p ConfigPatch) Config {
	if p.MaxBufferTime != nil {
		c.MaxBufferTime = *p.MaxBufferTime
	}
	if p.MaxPropsCount != nil {
		c.MaxPropsCount = *p.MaxPropsCount
	}
	if p.MaxAggregatedValue != nil {
		c.MaxAggregatedValue = *p.MaxAggregatedValue
	}
	if p.EnableLogging != nil {
		c.EnableLogging = *p.EnableLogging
	}
	switch {
	case p.OnFlush != nil:
		c.OnFlush = p.OnFlush
	case p.ClearOnFlush:
		c.OnFlush = nil
	}
	return c.withDefaults()
}

var settingsSchema = configutil.Schema{
	Optional: []string{"max_buffer_time", "max_props_count", "max_aggregated_value", "enable_logging"},
}

// PatchFromSettings decodes a free-form map such as a YAML section into a
// ConfigPatch. Durations accept strings like "30s".
func PatchFromSettings(settings map[string]any) (ConfigPatch, error) {
	var p ConfigPatch
	if err := settingsSchema.Validate(settings); err != nil {
		return ConfigPatch{}, err
	}
	if err := configutil.DecodeSettings(settings, &p); err != nil {
		return ConfigPatch{}, err
	}
	return p, nil
}
