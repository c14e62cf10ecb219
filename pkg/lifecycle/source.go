// Package lifecycle carries "the host is going away" signals to subscribers
// so buffered work can be flushed before it is lost.
package lifecycle

import "sync"

// Signal is a host lifecycle notification.
type Signal string

const (
	SignalBeforeUnload      Signal = "beforeunload"
	SignalPageHide          Signal = "pagehide"
	SignalVisibilityHidden  Signal = "visibility_hidden"
	SignalVisibilityVisible Signal = "visibility_visible"
)

// Hides reports whether the signal means the host may disappear.
func (s Signal) Hides() bool {
	switch s {
	case SignalBeforeUnload, SignalPageHide, SignalVisibilityHidden:
		return true
	default:
		return false
	}
}

// Source lets a subscriber register for lifecycle signals. Subscriptions are
// never removed.
type Source interface {
	Subscribe(handler func(Signal))
}

// Manual is a Source the host drives itself by calling Emit, e.g. from a
// client that reports visibility changes over the wire.
type Manual struct {
	mu       sync.RWMutex
	handlers []func(Signal)
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Subscribe(handler func(Signal)) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	m.handlers = append(m.handlers, handler)
	m.mu.Unlock()
}

// Emit calls every handler synchronously on the calling goroutine.
func (m *Manual) Emit(sig Signal) {
	m.mu.RLock()
	handlers := make([]func(Signal), len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.RUnlock()
	for _, h := range handlers {
		h(sig)
	}
}

func (m *Manual) Subscribers() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}
