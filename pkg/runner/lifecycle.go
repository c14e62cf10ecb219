package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrDrainTimeout      = errors.New("drain timeout")
)

// LifecycleRunner blocks until its context ends, then drains once within timeout.
type LifecycleRunner struct {
	state    atomic.Int32
	mu       sync.Mutex
	cancel   context.CancelFunc
	onceStop sync.Once
	hooks    Hooks
	drainer  Drainer
	stopErr  error
	timeout  time.Duration
}

func NewLifecycleRunner(drainer Drainer, hooks Hooks, timeout time.Duration) *LifecycleRunner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	r := &LifecycleRunner{hooks: hooks, drainer: drainer, timeout: timeout}
	r.state.Store(int32(StateNew))
	return r
}

func (r *LifecycleRunner) Run(ctx context.Context) error {
	if !r.casState(StateNew, StateStarting) {
		return ErrInvalidTransition
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	PrintBanner(r.hooks.BannerOut)
	if r.hooks.OnStart != nil {
		r.hooks.OnStart()
	}
	r.setState(StateRunning)
	<-ctx.Done()
	return r.stop()
}

// Stop ends Run, or drains directly when Run was never called.
func (r *LifecycleRunner) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return r.stop()
}

func (r *LifecycleRunner) State() State {
	return State(r.state.Load())
}

func (r *LifecycleRunner) stop() error {
	r.onceStop.Do(func() {
		r.setState(StateDraining)
		if r.drainer != nil {
			done := make(chan error, 1)
			go func() { done <- r.drainer.Drain() }()
			select {
			case err := <-done:
				r.stopErr = err
			case <-time.After(r.timeout):
				r.stopErr = ErrDrainTimeout
			}
		}
		if r.hooks.OnStop != nil {
			r.hooks.OnStop()
		}
		r.setState(StateStopped)
	})
	return r.stopErr
}

func (r *LifecycleRunner) casState(from, to State) bool {
	return r.state.CompareAndSwap(int32(from), int32(to))
}

func (r *LifecycleRunner) setState(s State) {
	r.state.Store(int32(s))
}

var _ Runner = (*LifecycleRunner)(nil)
