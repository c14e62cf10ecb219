package metrics

import "time"

// Event names recorded by the aggregator.
const (
	EventFlush          = "heartbeat_flush"
	EventDeliveryFailed = "heartbeat_delivery_failed"
	EventUsageError     = "heartbeat_usage_error"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}
