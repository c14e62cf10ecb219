// Package kafka publishes aggregated events to a Kafka topic.
package kafka

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"

	"github.com/harunnryd/heartbeat/pkg/configutil"
	"github.com/harunnryd/heartbeat/pkg/errorsx"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/sinks"
)

var jsonFast = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	HeaderEvent     = "heartbeat-event"
	HeaderTransport = "heartbeat-transport"

	defaultBatchTimeout = 100 * time.Millisecond
)

type Config struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	// KeyProperty names the property used as the message key.
	KeyProperty string `mapstructure:"key_property"`
}

var schema = configutil.Schema{
	Required: []string{"brokers", "topic"},
	Optional: []string{"batch_timeout", "key_property"},
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type value struct {
	Event      string    `json:"event"`
	Properties props.Map `json:"properties"`
	Transport  string    `json:"transport"`
	FlushID    string    `json:"flush_id,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// Sink writes through a synchronous writer for the default transport and an
// async, no-ack writer for the alternate one.
type Sink struct {
	cfg       Config
	writer    messageWriter
	alternate messageWriter
}

func New(cfg Config) *Sink {
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultBatchTimeout
	}
	if cfg.KeyProperty == "" {
		cfg.KeyProperty = "contentId"
	}
	sync := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	async := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireNone,
		Async:        true,
	}
	return newWithWriters(cfg, sync, async)
}

func newWithWriters(cfg Config, w, alt messageWriter) *Sink {
	if cfg.KeyProperty == "" {
		cfg.KeyProperty = "contentId"
	}
	return &Sink{cfg: cfg, writer: w, alternate: alt}
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
	if len(cfg.Brokers) == 0 {
		return nil, errorsx.New(errorsx.ReasonSinkConfig, "kafka sink needs at least one broker")
	}
	return New(cfg), nil
}

func (s *Sink) Name() string { return "kafka" }

func (s *Sink) Track(ctx context.Context, eventName string, properties props.Map, opts sinks.Options) error {
	transport := opts.Transport.Normalize()
	payload, err := jsonFast.Marshal(value{
		Event:      eventName,
		Properties: properties,
		Transport:  string(transport),
		FlushID:    opts.FlushID,
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonSinkDelivery)
	}
	msg := kafka.Message{
		Key:   s.key(properties, opts),
		Value: payload,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: HeaderEvent, Value: []byte(eventName)},
			{Key: HeaderTransport, Value: []byte(transport)},
		},
	}
	w := s.writer
	if transport == sinks.TransportAlternate {
		w = s.alternate
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonSinkDelivery)
	}
	return nil
}

func (s *Sink) Close() error {
	err := s.writer.Close()
	if aerr := s.alternate.Close(); err == nil {
		err = aerr
	}
	return err
}

func (s *Sink) key(properties props.Map, opts sinks.Options) []byte {
	if v, ok := properties.Get(s.cfg.KeyProperty); ok {
		if text, ok := v.Text(); ok && text != "" {
			return []byte(text)
		}
	}
	if opts.FlushID != "" {
		return []byte(opts.FlushID)
	}
	return nil
}

var _ sinks.Sink = (*Sink)(nil)
