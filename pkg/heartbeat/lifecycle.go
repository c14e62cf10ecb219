package heartbeat

import (
	"github.com/harunnryd/heartbeat/pkg/lifecycle"
	"github.com/harunnryd/heartbeat/pkg/runner"
	"github.com/harunnryd/heartbeat/pkg/sinks"
	"github.com/harunnryd/heartbeat/pkg/store"
)

// bridge subscribes to the lifecycle source once per aggregator.
func (a *Aggregator) bridge() {
	a.bridgeOnce.Do(func() {
		if a.source == nil {
			return
		}
		a.source.Subscribe(a.onSignal)
	})
}

func (a *Aggregator) onSignal(sig lifecycle.Signal) {
	if !sig.Hides() {
		return
	}
	n, _ := a.flushKeys(func(s *store.Store) []store.Key { return s.Keys() }, sinks.TransportAlternate, ReasonPageUnload)
	if a.Config().EnableLogging {
		a.log.Debug("heartbeat_lifecycle_flush", "signal", string(sig), "records", n)
	}
}

// Drain flushes every record over the alternate transport, as on a page
// unload, and returns the joined delivery errors.
func (a *Aggregator) Drain() error {
	_, err := a.flushKeys(func(s *store.Store) []store.Key { return s.Keys() }, sinks.TransportAlternate, ReasonPageUnload)
	return err
}

var _ runner.Drainer = (*Aggregator)(nil)
