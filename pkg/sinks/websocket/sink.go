// Package websocket delivers aggregated events as JSON text frames over a
// single WebSocket connection.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/harunnryd/heartbeat/pkg/configutil"
	"github.com/harunnryd/heartbeat/pkg/errorsx"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/sinks"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	URL              string            `mapstructure:"url"`
	Headers          map[string]string `mapstructure:"headers"`
	HandshakeTimeout time.Duration     `mapstructure:"handshake_timeout"`
	WriteTimeout     time.Duration     `mapstructure:"write_timeout"`
	// AlternateWriteTimeout bounds writes made with the alternate transport.
	AlternateWriteTimeout time.Duration `mapstructure:"alternate_write_timeout"`
}

var schema = configutil.Schema{
	Required: []string{"url"},
	Optional: []string{"headers", "handshake_timeout", "write_timeout", "alternate_write_timeout"},
}

// Message is the wire format of one event.
type Message struct {
	Event      string    `json:"event"`
	Properties props.Map `json:"properties"`
	Transport  string    `json:"transport"`
	FlushID    string    `json:"flush_id,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// Sink dials lazily and redials after a failed write.
type Sink struct {
	cfg    Config
	dialer *websocket.Dialer
	mu     sync.Mutex
	conn   *websocket.Conn
}

func New(cfg Config) *Sink {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 5 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.AlternateWriteTimeout <= 0 {
		cfg.AlternateWriteTimeout = 500 * time.Millisecond
	}
	return &Sink{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
	}
}

// NewFromSettings is a sinks.Factory.
func NewFromSettings(settings map[string]any) (sinks.Sink, error) {
	if err := schema.Validate(settings); err != nil {
		return nil, err
	}
	var cfg Config
	if err := configutil.DecodeSettings(settings, &cfg); err != nil {
		return nil, err
	}
	return New(cfg), nil
}

func (s *Sink) Name() string { return "websocket" }

func (s *Sink) Track(ctx context.Context, eventName string, properties props.Map, opts sinks.Options) error {
	transport := opts.Transport.Normalize()
	payload, err := json.Marshal(Message{
		Event:      eventName,
		Properties: properties,
		Transport:  string(transport),
		FlushID:    opts.FlushID,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonSinkDelivery)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	conn, err := s.connLocked(ctx)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonSinkDelivery)
	}
	timeout := s.cfg.WriteTimeout
	if transport == sinks.TransportAlternate {
		timeout = s.cfg.AlternateWriteTimeout
	}
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		_ = conn.Close()
		s.conn = nil
		return errorsx.Wrap(err, errorsx.ReasonSinkDelivery)
	}
	return nil
}

// Close sends a close frame and drops the connection.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *Sink) connLocked(ctx context.Context) (*websocket.Conn, error) {
	if s.conn != nil {
		return s.conn, nil
	}
	header := http.Header{}
	for k, v := range s.cfg.Headers {
		header.Set(k, v)
	}
	conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, header)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

var _ sinks.Sink = (*Sink)(nil)
