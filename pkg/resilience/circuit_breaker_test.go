package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	boom := errors.New("boom")
	cb.OnError(boom)
	if !cb.Allow() {
		t.Fatalf("expected closed below threshold")
	}
	cb.OnError(boom)
	if cb.Allow() {
		t.Fatalf("expected open at threshold")
	}
	now = now.Add(time.Minute)
	if !cb.Allow() {
		t.Fatalf("expected closed after cooldown")
	}
	cb.OnError(nil)
	cb.OnError(boom)
	cb.OnSuccess()
	cb.OnError(boom)
	if !cb.Allow() {
		t.Fatalf("expected success to reset the failure count")
	}
}
