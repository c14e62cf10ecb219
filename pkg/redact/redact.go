package redact

import (
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/harunnryd/heartbeat/pkg/props"
)

var enabled atomic.Bool

var (
	emailRe = regexp.MustCompile(`(?i)[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	phoneRe = regexp.MustCompile(`\b\+?\d[\d\s\-]{7,}\d\b`)
)

// SetEnabled toggles PII redaction.
func SetEnabled(v bool) {
	enabled.Store(v)
}

func Enabled() bool {
	return enabled.Load()
}

// Text masks emails and phone numbers when redaction is enabled.
func Text(in string) string {
	if !enabled.Load() || strings.TrimSpace(in) == "" {
		return in
	}
	out := emailRe.ReplaceAllString(in, "[REDACTED_EMAIL]")
	out = phoneRe.ReplaceAllString(out, "[REDACTED_PHONE]")
	return out
}

// Props returns a copy of m with every text value passed through Text,
// including texts nested in sequences and mappings.
func Props(m props.Map) props.Map {
	if !enabled.Load() {
		return m
	}
	var out props.Map
	m.Range(func(k string, v props.Value) bool {
		out.Set(k, value(v))
		return true
	})
	return out
}

func value(v props.Value) props.Value {
	switch v.Kind() {
	case props.KindText:
		s, _ := v.Text()
		return props.Text(Text(s))
	case props.KindSequence:
		items, _ := v.Sequence()
		for i := range items {
			items[i] = value(items[i])
		}
		return props.Sequence(items...)
	case props.KindMapping:
		m, _ := v.Mapping()
		return props.Mapping(Props(m))
	default:
		return v
	}
}
