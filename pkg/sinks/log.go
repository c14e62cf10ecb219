package sinks

import (
	"context"
	"log/slog"
	"os"

	"github.com/harunnryd/heartbeat/pkg/configutil"
	"github.com/harunnryd/heartbeat/pkg/logging"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/redact"
)

// LogSink writes each event as a structured log record. Text properties pass
// through redact before they are written.
type LogSink struct {
	log   *slog.Logger
	level slog.Level
}

type logSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var logSchema = configutil.Schema{Optional: []string{"level", "format"}}

func NewLogSink(log *slog.Logger, level slog.Level) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log, level: level}
}

// NewLogSinkFromSettings builds a LogSink writing to stdout.
func NewLogSinkFromSettings(settings map[string]any) (Sink, error) {
	if err := logSchema.Validate(settings); err != nil {
		return nil, err
	}
	var s logSettings
	if err := configutil.DecodeSettings(settings, &s); err != nil {
		return nil, err
	}
	level := logging.ParseLevel(s.Level)
	return NewLogSink(logging.NewLogger(os.Stdout, level, s.Format), level), nil
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Track(ctx context.Context, eventName string, properties props.Map, opts Options) error {
	s.log.LogAttrs(ctx, s.level, "telemetry_event",
		slog.String("event_name", eventName),
		slog.String("transport", string(opts.Transport.Normalize())),
		slog.String("flush_id", opts.FlushID),
		slog.Any("properties", redact.Props(properties).ToAny()),
	)
	return nil
}

var _ Sink = (*LogSink)(nil)
