package runner

import (
	"bytes"
	"context"
	"io"

	"github.com/dimiro1/banner"
)

type State int

const (
	StateNew State = iota
	StateStarting
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type Runner interface {
	Run(ctx context.Context) error
	Stop() error
	State() State
}

// Hooks run around the lifecycle. BannerOut, when set, receives the start banner.
type Hooks struct {
	OnStart   func()
	OnStop    func()
	BannerOut io.Writer
}

// Drainer flushes outstanding work before the runner stops.
type Drainer interface {
	Drain() error
}

// DrainFunc adapts a function to Drainer.
type DrainFunc func() error

func (f DrainFunc) Drain() error { return f() }

const Version = "dev"

func PrintBanner(w io.Writer) {
	if w == nil {
		return
	}
	tpl := "{{ .Title \"HEARTBEAT\" \"\" 0 }}\nVersion: " + Version + "\n"
	banner.Init(w, true, false, bytes.NewBufferString(tpl))
}
