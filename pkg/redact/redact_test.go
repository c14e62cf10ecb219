package redact

import (
	"strings"
	"testing"

	"github.com/harunnryd/heartbeat/pkg/props"
)

func TestRedactDisabled(t *testing.T) {
	SetEnabled(false)
	in := "email a@b.com and phone +62 812 3456 7890"
	if got := Text(in); got != in {
		t.Fatalf("expected no redaction, got %q", got)
	}
}

func TestRedactEnabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	in := "email a@b.com and phone +62 812 3456 7890"
	got := Text(in)
	if want := "[REDACTED_EMAIL]"; !strings.Contains(got, want) {
		t.Fatalf("expected %q in output", want)
	}
	if want := "[REDACTED_PHONE]"; !strings.Contains(got, want) {
		t.Fatalf("expected %q in output", want)
	}
}

func TestRedactPropsNested(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)
	in := props.Of(
		"watchSeconds", 30,
		"viewer", "a@b.com",
		"contacts", []any{"c@d.com"},
		"profile", map[string]any{"email": "e@f.com"},
	)
	out := Props(in)

	v, _ := out.Get("viewer")
	if s, _ := v.Text(); s != "[REDACTED_EMAIL]" {
		t.Fatalf("expected top-level text redacted, got %q", s)
	}
	seq, _ := out.Get("contacts")
	items, _ := seq.Sequence()
	if s, _ := items[0].Text(); s != "[REDACTED_EMAIL]" {
		t.Fatalf("expected sequence text redacted, got %q", s)
	}
	m, _ := out.Get("profile")
	pm, _ := m.Mapping()
	email, _ := pm.Get("email")
	if s, _ := email.Text(); s != "[REDACTED_EMAIL]" {
		t.Fatalf("expected nested text redacted, got %q", s)
	}
	n, _ := out.Get("watchSeconds")
	if f, _ := n.Number(); f != 30 {
		t.Fatalf("expected numbers untouched")
	}
	orig, _ := in.Get("viewer")
	if s, _ := orig.Text(); s != "a@b.com" {
		t.Fatalf("expected input untouched")
	}
}
