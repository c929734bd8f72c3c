package assistant

import (
	"testing"
	"time"
)

func TestStreamOrderAndClose(t *testing.T) {
	s := NewStream(8)
	s.Send("a")
	s.Send("b")
	s.Error("boom")
	s.Close()

	var got []Event
	for ev := range s.Events() {
		got = append(got, ev)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].Data != "a" || got[1].Data != "b" {
		t.Errorf("content order = %q, %q", got[0].Data, got[1].Data)
	}
	if got[2].Type != EventError {
		t.Errorf("last event type = %s, want error", got[2].Type)
	}
}

func TestStreamDropsEmptyContent(t *testing.T) {
	s := NewStream(4)
	s.Send("")
	s.Send("x")
	s.Close()

	var got []Event
	for ev := range s.Events() {
		got = append(got, ev)
	}
	if len(got) != 1 || got[0].Data != "x" {
		t.Errorf("events = %v, want just x", got)
	}
}

func TestDetachUnblocksProducer(t *testing.T) {
	s := NewStream(1)
	done := make(chan struct{})
	go func() {
		// Second send would block forever without a consumer.
		s.Send("first")
		s.Send("second")
		s.Close()
		close(done)
	}()

	s.Detach()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("producer stayed blocked after Detach")
	}
}

func TestCloseAndDetachAreIdempotent(t *testing.T) {
	s := NewStream(1)
	s.Detach()
	s.Detach()
	s.Close()
	s.Close()
}
