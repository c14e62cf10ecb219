package observers

import (
	"context"
	"log/slog"
	"sort"

	"github.com/harunnryd/heartbeat/pkg/metrics"
)

// LoggerObserver writes metrics events as log records. Delivery failures and
// usage errors log at warn, everything else at debug.
type LoggerObserver struct {
	log *slog.Logger
}

func NewLoggerObserver(log *slog.Logger) *LoggerObserver {
	if log == nil {
		log = slog.Default()
	}
	return &LoggerObserver{log: log}
}

func (o *LoggerObserver) RecordEvent(ev metrics.MetricsEvent) {
	attrs := []slog.Attr{
		slog.String("name", ev.Name),
		slog.Time("time", ev.Time),
		slog.Float64("value", ev.Value),
	}
	for _, k := range sortedKeys(ev.Tags) {
		attrs = append(attrs, slog.String(k, ev.Tags[k]))
	}
	for _, k := range sortedKeys(ev.Fields) {
		attrs = append(attrs, slog.Any(k, ev.Fields[k]))
	}
	level := slog.LevelDebug
	switch ev.Name {
	case metrics.EventDeliveryFailed, metrics.EventUsageError:
		level = slog.LevelWarn
	}
	o.log.LogAttrs(context.Background(), level, "metrics", attrs...)
}

// MultiObserver fans events out to every non-nil observer.
type MultiObserver struct {
	list []metrics.Observer
}

func NewMultiObserver(list ...metrics.Observer) *MultiObserver {
	return &MultiObserver{list: list}
}

func (m *MultiObserver) RecordEvent(ev metrics.MetricsEvent) {
	for _, obs := range m.list {
		if obs != nil {
			obs.RecordEvent(ev)
		}
	}
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	_ metrics.Observer = (*LoggerObserver)(nil)
	_ metrics.Observer = (*MultiObserver)(nil)
)
