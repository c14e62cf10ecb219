package lifecycle

import "testing"

func TestSignalHides(t *testing.T) {
	for _, sig := range []Signal{SignalBeforeUnload, SignalPageHide, SignalVisibilityHidden} {
		if !sig.Hides() {
			t.Fatalf("expected %s to hide", sig)
		}
	}
	if SignalVisibilityVisible.Hides() {
		t.Fatalf("expected visible not to hide")
	}
}

func TestManualEmitsToAllSubscribers(t *testing.T) {
	m := NewManual()
	var got []Signal
	m.Subscribe(func(s Signal) { got = append(got, s) })
	m.Subscribe(func(s Signal) { got = append(got, s) })
	m.Subscribe(nil)
	m.Emit(SignalPageHide)
	if len(got) != 2 || got[0] != SignalPageHide {
		t.Fatalf("unexpected deliveries %v", got)
	}
	if m.Subscribers() != 2 {
		t.Fatalf("expected nil handler ignored")
	}
}
