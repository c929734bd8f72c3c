// Package assistant runs the conversational loop: draft generation, bounded
// tool calling against the retrieval engine, grounded regeneration, and
// transcript persistence.
package assistant

import "sync"

// EventType distinguishes content tokens from the terminal error event.
type EventType string

const (
	EventContent EventType = "content"
	EventError   EventType = "error"
)

// Event is one item on the output stream.
type Event struct {
	Type EventType `json:"type"`
	Data string    `json:"data"`
}

// Stream is the single-producer, single-consumer output of one turn. The
// producer blocks when the consumer is slow; a detached consumer turns all
// further sends into drops so the loop still runs to completion and persists.
type Stream struct {
	events chan Event

	detach    chan struct{}
	closeOnce sync.Once
	detOnce   sync.Once
}

// NewStream creates a stream with the given channel buffer.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 64
	}
	return &Stream{
		events: make(chan Event, buffer),
		detach: make(chan struct{}),
	}
}

// Events returns the consumer side of the stream. It is closed when the turn
// finishes, on every path.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Send emits one content token. After Detach it is a no-op.
func (s *Stream) Send(data string) {
	if data == "" {
		return
	}
	select {
	case s.events <- Event{Type: EventContent, Data: data}:
	case <-s.detach:
	}
}

// Error emits the terminal error event. The loop calls Close right after.
func (s *Stream) Error(msg string) {
	select {
	case s.events <- Event{Type: EventError, Data: msg}:
	case <-s.detach:
	}
}

// Detach marks the consumer as gone. The producer keeps running; its sends
// become drops. Safe to call more than once.
func (s *Stream) Detach() {
	s.detOnce.Do(func() { close(s.detach) })
}

// Close ends the stream. Safe to call more than once.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.events) })
}
