package activity

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// CaptureHook keeps every event it receives. Tests and examples use it to
// inspect what a list emitted.
type CaptureHook struct {
	// Err is returned from every Notify call.
	Err error

	mu     sync.Mutex
	events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, NormalizeEvent(event))
	return h.Err
}

// Events returns a copy of the captured events in arrival order.
func (h *CaptureHook) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// Verbs returns the captured verbs in arrival order.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.events))
	for _, event := range h.events {
		out = append(out, event.Verb)
	}
	return out
}

func (h *CaptureHook) Reset() {
	h.mu.Lock()
	h.events = nil
	h.mu.Unlock()
}

// LogHook writes every event to a zerolog logger at info level.
type LogHook struct {
	Logger zerolog.Logger
}

func (h LogHook) Notify(_ context.Context, event Event) error {
	entry := h.Logger.Info().
		Str("verb", event.Verb).
		Str("list", event.List).
		Str("object_type", event.ObjectType).
		Str("object_id", event.ObjectID).
		Str("channel", event.Channel).
		Time("occurred_at", event.OccurredAt)
	if event.ActorID != "" {
		entry = entry.Str("actor_id", event.ActorID)
	}
	if len(event.Metadata) > 0 {
		entry = entry.Fields(event.Metadata)
	}
	entry.Msg("list activity")
	return nil
}
