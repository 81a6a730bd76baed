package notice

import (
	"testing"
	"time"
)

func TestRecorder_Drain(t *testing.T) {
	t.Parallel()

	var r Recorder
	if got := r.Drain(); got == nil || len(got) != 0 {
		t.Fatalf("empty Drain = %#v", got)
	}
	r.Notify(Success("Settings saved successfully!"))
	r.Notify(Error("Failed to save settings").For(2 * time.Second))

	got := r.Drain()
	if len(got) != 2 {
		t.Fatalf("Drain len = %d", len(got))
	}
	if got[0].Kind != KindSuccess || got[0].Duration != DefaultDuration {
		t.Fatalf("unexpected first notice: %#v", got[0])
	}
	if got[1].Kind != KindError || got[1].Duration != 2*time.Second {
		t.Fatalf("unexpected second notice: %#v", got[1])
	}
	if len(r.Drain()) != 0 {
		t.Fatalf("Drain did not clear")
	}
}

func TestSinkFunc(t *testing.T) {
	t.Parallel()

	var got Notice
	var s Sink = SinkFunc(func(n Notice) { got = n })
	s.Notify(Info("Showing different verse"))
	if got.Text != "Showing different verse" || got.Kind != KindInfo {
		t.Fatalf("SinkFunc got %#v", got)
	}
	Discard.Notify(Info("dropped"))
}
