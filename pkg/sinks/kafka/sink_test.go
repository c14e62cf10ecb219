package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/harunnryd/heartbeat/pkg/errorsx"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/sinks"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestSinkRoutesByTransport(t *testing.T) {
	sync, async := &fakeWriter{}, &fakeWriter{}
	s := newWithWriters(Config{Topic: "beats"}, sync, async)
	ctx := context.Background()
	p := props.Of("watchSeconds", 10, "contentId", "vid1")

	if err := s.Track(ctx, "play", p, sinks.Options{FlushID: "f1"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := s.Track(ctx, "play", p, sinks.Options{Transport: sinks.TransportAlternate}); err != nil {
		t.Fatalf("track alternate: %v", err)
	}
	if len(sync.msgs) != 1 || len(async.msgs) != 1 {
		t.Fatalf("expected one message per writer, got %d/%d", len(sync.msgs), len(async.msgs))
	}
	msg := sync.msgs[0]
	if string(msg.Key) != "vid1" {
		t.Fatalf("expected content id key, got %q", msg.Key)
	}
	var decoded struct {
		Event      string         `json:"event"`
		Properties map[string]any `json:"properties"`
		Transport  string         `json:"transport"`
		FlushID    string         `json:"flush_id"`
	}
	if err := jsonFast.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Event != "play" || decoded.Transport != "default" || decoded.FlushID != "f1" {
		t.Fatalf("unexpected payload %+v", decoded)
	}
	if decoded.Properties["watchSeconds"] != 10.0 {
		t.Fatalf("expected watchSeconds=10, got %v", decoded.Properties["watchSeconds"])
	}
	if string(async.msgs[0].Headers[1].Value) != "alternate" {
		t.Fatalf("expected transport header on alternate message")
	}
	if err := s.Close(); err != nil || !sync.closed || !async.closed {
		t.Fatalf("expected both writers closed")
	}
}

func TestSinkKeyFallsBackToFlushID(t *testing.T) {
	w := &fakeWriter{}
	s := newWithWriters(Config{Topic: "beats"}, w, w)
	if err := s.Track(context.Background(), "play", props.Of("contentId", 7), sinks.Options{FlushID: "f9"}); err != nil {
		t.Fatalf("track: %v", err)
	}
	if string(w.msgs[0].Key) != "f9" {
		t.Fatalf("expected flush id key, got %q", w.msgs[0].Key)
	}
}

func TestSinkWriteErrorIsDeliveryError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	s := newWithWriters(Config{Topic: "beats"}, w, w)
	err := s.Track(context.Background(), "play", props.Map{}, sinks.Options{})
	if !errorsx.HasReason(err, errorsx.ReasonSinkDelivery) {
		t.Fatalf("expected sink_delivery, got %v", err)
	}
}

func TestNewFromSettings(t *testing.T) {
	s, err := NewFromSettings(map[string]any{"brokers": "localhost:9092", "topic": "beats", "batch_timeout": "50ms"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ks := s.(*Sink)
	if len(ks.cfg.Brokers) != 1 || ks.cfg.BatchTimeout.Milliseconds() != 50 {
		t.Fatalf("unexpected config %+v", ks.cfg)
	}
	if _, err := NewFromSettings(map[string]any{"topic": "beats"}); err == nil {
		t.Fatalf("expected missing brokers error")
	}
}
