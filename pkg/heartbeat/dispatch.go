package heartbeat

import (
	"github.com/harunnryd/heartbeat/pkg/errorsx"
	"github.com/harunnryd/heartbeat/pkg/metrics"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/sinks"
	"github.com/harunnryd/heartbeat/pkg/store"
)

// CallOptions modify a single Heartbeat call.
type CallOptions struct {
	// Transport is used if this call flushes its own record.
	Transport sinks.Transport
	// ForceFlush ships the record right after merging.
	ForceFlush bool
}

type FlushOptions struct {
	Transport sinks.Transport
}

// Heartbeat merges p into the record for (eventName, contentID) and decides
// whether to flush it now or (re)start its inactivity timer.
//
// With both identifiers empty it flushes everything. With only one empty it
// logs a usage warning and does nothing else. Buffered records for the same
// event name but another content id are flushed first. It returns a for
// chaining.
func (a *Aggregator) Heartbeat(eventName, contentID string, p props.Map, opts CallOptions) *Aggregator {
	a.bridge()

	if eventName == "" && contentID == "" {
		a.flushKeys(func(s *store.Store) []store.Key { return s.Keys() }, opts.Transport, ReasonManualFlushCall)
		return a
	}
	if eventName == "" || contentID == "" {
		a.usageError(eventName, contentID)
		return a
	}

	key := store.Key{EventName: eventName, ContentID: contentID}

	// The previous content ships before the new one is buffered, so sinks
	// and OnFlush never see both at once.
	a.flushKeys(func(s *store.Store) []store.Key {
		var switched []store.Key
		for _, k := range s.KeysByEvent(eventName) {
			if k.ContentID != contentID {
				switched = append(switched, k)
			}
		}
		return switched
	}, sinks.TransportDefault, ReasonContentSwitch)

	a.mu.Lock()
	var pending []pendingFlush
	now := a.now()
	rec, ok := a.store.Get(key)
	if ok {
		rec.Props = props.Merge(rec.Props, p)
		rec.Beats++
		rec.UpdatedAt = now
	} else {
		rec = store.Record{
			EventName: eventName,
			ContentID: contentID,
			Props:     p.Clone(),
			Beats:     1,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	a.store.Set(key, rec)

	cfg := a.cfg
	if reason, hit := checkLimits(rec, cfg); hit {
		f, _ := a.dequeueLocked(key, opts.Transport, reason)
		pending = append(pending, f)
	} else if opts.ForceFlush {
		f, _ := a.dequeueLocked(key, opts.Transport, ReasonForceFlush)
		pending = append(pending, f)
	} else {
		a.timers.Arm(key, cfg.MaxBufferTime, a.expire)
		if cfg.EnableLogging {
			a.log.Debug("heartbeat_buffered",
				"event", eventName,
				"content_id", contentID,
				"beats", rec.Beats,
				"props", rec.Props.Len(),
			)
		}
	}
	obs := a.observer
	a.mu.Unlock()

	a.deliverAll(pending, cfg, obs)
	return a
}

// expire runs on the scheduler when a key's inactivity window ends.
func (a *Aggregator) expire(key store.Key, gen uint64) {
	a.mu.Lock()
	if !a.timers.Expire(key, gen) {
		a.mu.Unlock()
		return
	}
	f, ok := a.dequeueLocked(key, sinks.TransportDefault, ReasonMaxBufferTime)
	cfg, obs := a.cfg, a.observer
	a.mu.Unlock()
	if ok {
		a.deliver(f, cfg, obs)
	}
}

// Flush ships buffered records immediately. Scope narrows as arguments are
// supplied: no event name flushes every record and ignores contentID, an event
// name alone flushes that event's records, and both flush the exact key. Use
// FlushByContentID to flush one content id across events. It returns how many
// records were flushed.
func (a *Aggregator) Flush(eventName, contentID string, opts FlushOptions) int {
	key := store.Key{EventName: eventName, ContentID: contentID}
	var sel func(*store.Store) []store.Key
	switch {
	case eventName == "":
		sel = func(s *store.Store) []store.Key { return s.Keys() }
	case contentID == "":
		sel = func(s *store.Store) []store.Key { return s.KeysByEvent(eventName) }
	default:
		sel = func(*store.Store) []store.Key { return []store.Key{key} }
	}
	n, _ := a.flushKeys(sel, opts.Transport, ReasonManualFlushCall)
	return n
}

// FlushByContentID ships every record buffered for contentID regardless of
// event name.
func (a *Aggregator) FlushByContentID(contentID string, opts FlushOptions) int {
	n, _ := a.flushKeys(func(s *store.Store) []store.Key { return s.KeysByContent(contentID) }, opts.Transport, ReasonManualFlushCall)
	return n
}

// flushKeys snapshots the selected keys under the lock, dequeues them and
// delivers after unlocking.
func (a *Aggregator) flushKeys(sel func(*store.Store) []store.Key, transport sinks.Transport, reason FlushReason) (int, error) {
	a.mu.Lock()
	pending := a.dequeueAllLocked(sel(a.store), transport, reason)
	cfg, obs := a.cfg, a.observer
	a.mu.Unlock()
	return len(pending), a.deliverAll(pending, cfg, obs)
}

// State returns copies of the buffered records in insertion order.
func (a *Aggregator) State() []store.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := a.store.Keys()
	out := make([]store.Record, 0, len(keys))
	for _, k := range keys {
		rec, _ := a.store.Get(k)
		out = append(out, rec.Clone())
	}
	return out
}

// Clear drops every buffered record and cancels every timer. Nothing is sent
// and OnFlush is not called.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	a.timers.CancelAll()
	n := a.store.Len()
	a.store.ClearAll()
	enabled := a.cfg.EnableLogging
	a.mu.Unlock()
	if enabled {
		a.log.Debug("heartbeat_cleared", "records", n)
	}
}

func (a *Aggregator) usageError(eventName, contentID string) {
	err := errorsx.New(errorsx.ReasonMissingIdentity, "heartbeat needs both event name and content id")
	a.log.Warn("heartbeat_usage_error",
		"event", eventName,
		"content_id", contentID,
		"error", err,
	)
	a.mu.Lock()
	obs := a.observer
	a.mu.Unlock()
	obs.RecordEvent(metrics.MetricsEvent{
		Name:  metrics.EventUsageError,
		Time:  a.now(),
		Value: 1,
		Tags: map[string]string{
			"event":  eventName,
			"reason": string(errorsx.ReasonMissingIdentity),
		},
	})
}
