//go:build unix

package lifecycle

import (
	"syscall"
	"testing"
	"time"
)

func TestSignalsMapsOSSignal(t *testing.T) {
	s := NewSignals(syscall.SIGUSR1)
	defer s.Stop()
	got := make(chan Signal, 1)
	s.Subscribe(func(sig Signal) { got <- sig })

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case sig := <-got:
		if sig != SignalBeforeUnload {
			t.Fatalf("expected beforeunload, got %s", sig)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("signal not delivered")
	}
}
