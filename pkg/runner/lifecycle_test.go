package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLifecycleRunnerDrainsOnCancel(t *testing.T) {
	var drained, started, stopped int
	r := NewLifecycleRunner(DrainFunc(func() error {
		drained++
		return nil
	}), Hooks{
		OnStart: func() { started++ },
		OnStop:  func() { stopped++ },
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for r.State() != StateRunning {
		if time.Now().After(deadline) {
			t.Fatalf("runner never reached running, state=%s", r.State())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("run error: %v", err)
	}
	if drained != 1 || started != 1 || stopped != 1 {
		t.Fatalf("expected one drain/start/stop, got %d/%d/%d", drained, started, stopped)
	}
	if r.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", r.State())
	}
	if err := r.Stop(); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}
	if drained != 1 {
		t.Fatalf("expected drain to run once")
	}
	if err := r.Run(context.Background()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition on rerun, got %v", err)
	}
}

func TestLifecycleRunnerDrainTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	r := NewLifecycleRunner(DrainFunc(func() error {
		<-release
		return nil
	}), Hooks{}, 10*time.Millisecond)
	if err := r.Stop(); !errors.Is(err, ErrDrainTimeout) {
		t.Fatalf("expected drain timeout, got %v", err)
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	if !strings.Contains(buf.String(), "Version: "+Version) {
		t.Fatalf("expected version line in banner, got %q", buf.String())
	}
	PrintBanner(nil)
}
