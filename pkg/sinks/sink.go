// Package sinks defines the telemetry boundary aggregated heartbeats are
// delivered to, plus the registry hosts use to pick an implementation by name.
package sinks

import (
	"context"

	"github.com/harunnryd/heartbeat/pkg/props"
)

// Transport selects how a sink should deliver an event.
type Transport string

const (
	TransportDefault Transport = "default"
	// TransportAlternate is the best-effort mode used when the host is going
	// away: hand the event off as fast as possible, do not wait on a response.
	TransportAlternate Transport = "alternate"
)

// Normalize maps the empty or an unknown transport to TransportDefault.
func (t Transport) Normalize() Transport {
	if t == TransportAlternate {
		return TransportAlternate
	}
	return TransportDefault
}

// Options accompany every Track call.
type Options struct {
	Transport Transport
	FlushID   string
}

// Sink delivers one aggregated event. Implementations may fail; callers treat
// delivery as fire-and-forget and never retry.
type Sink interface {
	Name() string
	Track(ctx context.Context, eventName string, properties props.Map, opts Options) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, eventName string, properties props.Map, opts Options) error

func (f SinkFunc) Name() string { return "func" }

func (f SinkFunc) Track(ctx context.Context, eventName string, properties props.Map, opts Options) error {
	return f(ctx, eventName, properties, opts)
}

// Discard accepts and drops every event.
type Discard struct{}

func (Discard) Name() string { return "discard" }

func (Discard) Track(context.Context, string, props.Map, Options) error { return nil }
