package sinks

import (
	"sort"
	"strings"

	"github.com/harunnryd/heartbeat/pkg/errorsx"
)

// Factory builds a sink from free-form provider settings.
type Factory func(settings map[string]any) (Sink, error)

// Registry maps provider names to sink factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in "log" and "discard" providers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("log", NewLogSinkFromSettings)
	r.Register("discard", func(map[string]any) (Sink, error) { return Discard{}, nil })
	return r
}

func (r *Registry) Register(name string, factory Factory) {
	r.factories[normalizeProvider(name)] = factory
}

func (r *Registry) Build(provider string, settings map[string]any) (Sink, error) {
	fn := r.factories[normalizeProvider(provider)]
	if fn == nil {
		return nil, errorsx.New(errorsx.ReasonSinkConfig, "sink provider not registered: %s", provider)
	}
	s, err := fn(settings)
	if err != nil {
		return nil, errorsx.Wrap(err, errorsx.ReasonSinkConfig)
	}
	return s, nil
}

func (r *Registry) Providers() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normalizeProvider(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
