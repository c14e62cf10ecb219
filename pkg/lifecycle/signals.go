package lifecycle

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Signals turns OS signals into SignalBeforeUnload for a long-running process.
type Signals struct {
	manual *Manual
	ch     chan os.Signal
	done   chan struct{}
	once   sync.Once
}

// NewSignals listens for sigs, or SIGINT and SIGTERM when none are given.
func NewSignals(sigs ...os.Signal) *Signals {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	s := &Signals{
		manual: NewManual(),
		ch:     make(chan os.Signal, 1),
		done:   make(chan struct{}),
	}
	signal.Notify(s.ch, sigs...)
	go s.loop()
	return s
}

func (s *Signals) Subscribe(handler func(Signal)) {
	s.manual.Subscribe(handler)
}

// Stop releases the OS signal registration.
func (s *Signals) Stop() {
	s.once.Do(func() {
		signal.Stop(s.ch)
		close(s.done)
	})
}

func (s *Signals) loop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ch:
			s.manual.Emit(SignalBeforeUnload)
		}
	}
}
