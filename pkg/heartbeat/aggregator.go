// Package heartbeat buffers high-frequency progress events per (event name,
// content id), merges their properties and ships one aggregated event to a
// sink when a flush trigger fires.
//
// Triggers are the inactivity timer, the property limits, a content switch
// on the same event name, an explicit flush and the host going away. Every
// trigger removes the record before the sink sees it, so a record is sent at
// most once and never merged into after it was handed off.
package heartbeat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harunnryd/heartbeat/pkg/lifecycle"
	"github.com/harunnryd/heartbeat/pkg/logging"
	"github.com/harunnryd/heartbeat/pkg/metrics"
	"github.com/harunnryd/heartbeat/pkg/sinks"
	"github.com/harunnryd/heartbeat/pkg/store"
	"github.com/harunnryd/heartbeat/pkg/timers"
)

type Options struct {
	// Sink receives aggregated events. Nil discards them.
	Sink   sinks.Sink
	Config Config
	// Scheduler drives the inactivity timers. Nil uses the runtime clock.
	Scheduler timers.Scheduler
	// Lifecycle, when set, is subscribed on the first heartbeat.
	Lifecycle lifecycle.Source
	Logger    *slog.Logger
	Observer  metrics.Observer
	// Context is passed to every sink call.
	Context context.Context
	// DeliveryTimeout bounds each sink call when positive.
	DeliveryTimeout time.Duration
	Now             func() time.Time
}

// Aggregator owns one event store, its timers and its configuration. It is
// safe for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	cfg      Config
	store    *store.Store
	timers   *timers.Registry[store.Key]
	observer metrics.Observer

	sink            sinks.Sink
	source          lifecycle.Source
	bridgeOnce      sync.Once
	log             *slog.Logger
	ctx             context.Context
	deliveryTimeout time.Duration
	now             func() time.Time
}

func New(opts Options) *Aggregator {
	if opts.Sink == nil {
		opts.Sink = sinks.Discard{}
	}
	if opts.Observer == nil {
		opts.Observer = metrics.NoopObserver{}
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{
		cfg:             opts.Config.withDefaults(),
		store:           store.New(),
		timers:          timers.NewRegistry[store.Key](opts.Scheduler),
		observer:        opts.Observer,
		sink:            opts.Sink,
		source:          opts.Lifecycle,
		log:             logging.NewComponentLogger(opts.Logger, "heartbeat"),
		ctx:             opts.Context,
		deliveryTimeout: opts.DeliveryTimeout,
		now:             opts.Now,
	}
}

// SetObserver replaces the metrics observer. Nil installs a no-op observer.
func (a *Aggregator) SetObserver(obs metrics.Observer) {
	if obs == nil {
		obs = metrics.NoopObserver{}
	}
	a.mu.Lock()
	a.observer = obs
	a.mu.Unlock()
}

// Config returns a copy of the current configuration.
func (a *Aggregator) Config() Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Configure applies p and returns the resulting configuration. Pending timers
// keep the window they were armed with.
func (a *Aggregator) Configure(p ConfigPatch) Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = a.cfg.apply(p)
	return a.cfg
}

// ConfigureSettings decodes settings with PatchFromSettings and applies them.
func (a *Aggregator) ConfigureSettings(settings map[string]any) error {
	p, err := PatchFromSettings(settings)
	if err != nil {
		return err
	}
	a.Configure(p)
	return nil
}
