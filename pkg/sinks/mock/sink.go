package mock

import (
	"context"
	"sync"

	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/sinks"
)

// Call is one recorded Track invocation.
type Call struct {
	EventName string
	Props     props.Map
	Options   sinks.Options
}

// Sink records every Track call in memory. Err and PanicValue make it fail
// so callers can exercise delivery error handling.
type Sink struct {
	mu         sync.Mutex
	calls      []Call
	Err        error
	PanicValue any
}

func New() *Sink { return &Sink{} }

func (s *Sink) Name() string { return "mock" }

func (s *Sink) Track(_ context.Context, eventName string, properties props.Map, opts sinks.Options) error {
	s.mu.Lock()
	s.calls = append(s.calls, Call{EventName: eventName, Props: properties.Clone(), Options: opts})
	err, pv := s.Err, s.PanicValue
	s.mu.Unlock()
	if pv != nil {
		panic(pv)
	}
	return err
}

func (s *Sink) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *Sink) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

var _ sinks.Sink = (*Sink)(nil)
