package heartbeat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/harunnryd/heartbeat/pkg/errorsx"
	"github.com/harunnryd/heartbeat/pkg/metrics"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/sinks"
	"github.com/harunnryd/heartbeat/pkg/store"
)

// FlushReason says what triggered a flush.
type FlushReason string

const (
	ReasonMaxBufferTime      FlushReason = "maxBufferTime"
	ReasonMaxPropsCount      FlushReason = "maxPropsCount"
	ReasonMaxAggregatedValue FlushReason = "maxAggregatedValue"
	ReasonForceFlush         FlushReason = "forceFlush"
	ReasonContentSwitch      FlushReason = "contentSwitch"
	ReasonManualFlushCall    FlushReason = "manualFlushCall"
	ReasonPageUnload         FlushReason = "pageUnload"
)

// ContentIDProp is the payload property carrying the content id.
const ContentIDProp = "contentId"

// FlushEvent describes one flush attempt. Err is set when the sink failed.
type FlushEvent struct {
	ID        string
	EventName string
	ContentID string
	Props     props.Map
	Reason    FlushReason
	Transport sinks.Transport
	Beats     int
	Err       error
}

type pendingFlush struct {
	rec       store.Record
	reason    FlushReason
	transport sinks.Transport
}

// dequeueLocked removes key from the store and the timer registry. The
// caller must hold a.mu and deliver the result after releasing it.
func (a *Aggregator) dequeueLocked(key store.Key, transport sinks.Transport, reason FlushReason) (pendingFlush, bool) {
	rec, ok := a.store.Get(key)
	if !ok {
		return pendingFlush{}, false
	}
	a.timers.Cancel(key)
	a.store.Delete(key)
	return pendingFlush{rec: rec, reason: reason, transport: transport.Normalize()}, true
}

func (a *Aggregator) dequeueAllLocked(keys []store.Key, transport sinks.Transport, reason FlushReason) []pendingFlush {
	out := make([]pendingFlush, 0, len(keys))
	for _, key := range keys {
		if p, ok := a.dequeueLocked(key, transport, reason); ok {
			out = append(out, p)
		}
	}
	return out
}

// deliverAll runs without a.mu held so sinks and OnFlush may call back into
// the aggregator.
func (a *Aggregator) deliverAll(pending []pendingFlush, cfg Config, obs metrics.Observer) error {
	var errs []error
	for _, p := range pending {
		if err := a.deliver(p, cfg, obs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Aggregator) deliver(p pendingFlush, cfg Config, obs metrics.Observer) error {
	payload := p.rec.Props.Clone()
	payload.Set(ContentIDProp, props.Text(p.rec.ContentID))

	ev := FlushEvent{
		ID:        uuid.NewString(),
		EventName: p.rec.EventName,
		ContentID: p.rec.ContentID,
		Props:     payload,
		Reason:    p.reason,
		Transport: p.transport,
		Beats:     p.rec.Beats,
	}

	ev.Err = a.track(ev)
	if ev.Err != nil {
		a.log.Error("heartbeat_delivery_failed",
			"event", ev.EventName,
			"content_id", ev.ContentID,
			"reason", string(ev.Reason),
			"transport", string(ev.Transport),
			"flush_id", ev.ID,
			"error", ev.Err,
		)
		obs.RecordEvent(metrics.MetricsEvent{
			Name:  metrics.EventDeliveryFailed,
			Time:  a.now(),
			Value: 1,
			Tags: map[string]string{
				"event":  ev.EventName,
				"sink":   a.sink.Name(),
				"reason": string(errorsx.Reason(ev.Err)),
			},
		})
	} else if cfg.EnableLogging {
		a.log.Debug("heartbeat_flush",
			"event", ev.EventName,
			"content_id", ev.ContentID,
			"reason", string(ev.Reason),
			"transport", string(ev.Transport),
			"beats", ev.Beats,
			"props", payload.Len(),
		)
	}

	obs.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventFlush,
		Time:  a.now(),
		Value: float64(ev.Beats),
		Tags: map[string]string{
			"event":     ev.EventName,
			"reason":    string(ev.Reason),
			"transport": string(ev.Transport),
			"sink":      a.sink.Name(),
		},
		Fields: map[string]any{
			"content_id":  ev.ContentID,
			"flush_id":    ev.ID,
			"props_count": payload.Len(),
			"failed":      ev.Err != nil,
		},
	})

	a.notify(cfg.OnFlush, ev)
	return ev.Err
}

func (a *Aggregator) track(ev FlushEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errorsx.New(errorsx.ReasonSinkPanic, "sink %s panicked: %v", a.sink.Name(), r)
		}
	}()
	ctx := a.ctx
	if a.deliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.deliveryTimeout)
		defer cancel()
	}
	err = a.sink.Track(ctx, ev.EventName, ev.Props, sinks.Options{Transport: ev.Transport, FlushID: ev.ID})
	return errorsx.Wrap(err, errorsx.ReasonSinkDelivery)
}

func (a *Aggregator) notify(fn func(FlushEvent), ev FlushEvent) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("heartbeat_observer_panic",
				"event", ev.EventName,
				"content_id", ev.ContentID,
				"error", errorsx.New(errorsx.ReasonObserverPanic, "%s", fmt.Sprint(r)),
			)
		}
	}()
	fn(ev)
}
