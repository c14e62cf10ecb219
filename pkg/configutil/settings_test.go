package configutil

import (
	"testing"
	"time"

	"github.com/harunnryd/heartbeat/pkg/errorsx"
)

type sampleSettings struct {
	URL          string        `mapstructure:"url"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Brokers      []string      `mapstructure:"brokers"`
	Retries      int           `mapstructure:"retries"`
}

func TestDecodeSettingsNormalizesKeysAndTypes(t *testing.T) {
	var out sampleSettings
	err := DecodeSettings(map[string]any{
		"URL":           "ws://localhost",
		"write-timeout": "250ms",
		"brokers":       "a:9092,b:9092",
		"retries":       "3",
	}, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.URL != "ws://localhost" || out.WriteTimeout != 250*time.Millisecond || out.Retries != 3 {
		t.Fatalf("unexpected decode %+v", out)
	}
	if len(out.Brokers) != 2 || out.Brokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", out.Brokers)
	}
}

func TestDecodeSettingsReportsReason(t *testing.T) {
	var out sampleSettings
	err := DecodeSettings(map[string]any{"write_timeout": "soon"}, &out)
	if !errorsx.HasReason(err, errorsx.ReasonConfigDecode) {
		t.Fatalf("expected config_decode reason, got %v", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	s := Schema{Required: []string{"url"}, Optional: []string{"write_timeout"}}
	if err := s.Validate(map[string]any{"URL": "x", "write-timeout": "1s"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	err := s.Validate(map[string]any{"url": " ", "extra": 1})
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "config_decode: missing: url; unknown: extra"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("HB_TOPIC", "beats")
	got := ExpandEnv(map[string]any{
		"topic":  "${HB_TOPIC}",
		"nested": map[string]any{"list": []any{"$HB_TOPIC", 1}},
	})
	if got["topic"] != "beats" {
		t.Fatalf("expected expansion, got %v", got["topic"])
	}
	list := got["nested"].(map[string]any)["list"].([]any)
	if list[0] != "beats" || list[1] != 1 {
		t.Fatalf("unexpected nested expansion %v", list)
	}
}
