package heartbeat

import (
	"sync"
	"testing"
	"time"

	"github.com/harunnryd/heartbeat/pkg/lifecycle"
	"github.com/harunnryd/heartbeat/pkg/logging"
	"github.com/harunnryd/heartbeat/pkg/metrics"
	"github.com/harunnryd/heartbeat/pkg/sinks/mock"
	"github.com/harunnryd/heartbeat/pkg/timers"
)

type harness struct {
	agg     *Aggregator
	sink    *mock.Sink
	sched   *timers.ManualScheduler
	source  *lifecycle.Manual
	metrics *metrics.MemoryObserver

	mu      sync.Mutex
	flushes []FlushEvent
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		sink:    mock.New(),
		sched:   timers.NewManualScheduler(),
		source:  lifecycle.NewManual(),
		metrics: metrics.NewMemoryObserver(),
	}
	if cfg.OnFlush == nil {
		cfg.OnFlush = h.record
	}
	h.agg = New(Options{
		Sink:      h.sink,
		Config:    cfg,
		Scheduler: h.sched,
		Lifecycle: h.source,
		Logger:    logging.Discard(),
		Observer:  h.metrics,
	})
	return h
}

func (h *harness) record(ev FlushEvent) {
	h.mu.Lock()
	h.flushes = append(h.flushes, ev)
	h.mu.Unlock()
}

func (h *harness) events() []FlushEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]FlushEvent, len(h.flushes))
	copy(out, h.flushes)
	return out
}

func (h *harness) advance(d time.Duration) int {
	return h.sched.Advance(d)
}

func number(t *testing.T, ev FlushEvent, key string) float64 {
	t.Helper()
	v, ok := ev.Props.Get(key)
	if !ok {
		t.Fatalf("flush %s/%s has no %q", ev.EventName, ev.ContentID, key)
	}
	n, ok := v.Number()
	if !ok {
		t.Fatalf("%q is %s, not a number", key, v.Kind())
	}
	return n
}
