package sinks

import (
	"context"
	"time"

	"github.com/harunnryd/heartbeat/pkg/errorsx"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/resilience"
)

// Breaker stops calling a failing sink for a cooldown period. While open,
// Track fails fast with a sink_circuit_open error.
type Breaker struct {
	inner Sink
	cb    *resilience.CircuitBreaker
}

func NewBreaker(inner Sink, threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{inner: inner, cb: resilience.NewCircuitBreaker(threshold, cooldown)}
}

func (b *Breaker) Name() string { return b.inner.Name() }

func (b *Breaker) Track(ctx context.Context, eventName string, properties props.Map, opts Options) error {
	if !b.cb.Allow() {
		return errorsx.New(errorsx.ReasonSinkCircuitOpen, "sink %s circuit open", b.inner.Name())
	}
	if err := b.inner.Track(ctx, eventName, properties, opts); err != nil {
		b.cb.OnError(err)
		return err
	}
	b.cb.OnSuccess()
	return nil
}

var _ Sink = (*Breaker)(nil)
