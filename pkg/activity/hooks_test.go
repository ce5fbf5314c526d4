package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v", "nested": map[string]any{"index": 1}}
	evt := Event{
		Verb:       " formlist.item.added ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " formlist.item ",
		ObjectID:   " 42 ",
		Channel:    " formlist ",
		List:       " recipients ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != VerbItemAdded || got.ObjectType != ObjectTypeItem || got.ObjectID != "42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "formlist" || got.List != "recipients" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	got.Metadata["nested"].(map[string]any)["index"] = 9
	if evt.Metadata["k"] != "v" || meta["nested"].(map[string]any)["index"] != 1 {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyDropsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: VerbItemAdded, ObjectType: ObjectTypeItem}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events()))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, event Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	//nolint:staticcheck // nil context falls back to Background
	err := hooks.Notify(nil, Event{Verb: VerbItemMoved, ObjectType: ObjectTypeItem, ObjectID: "1"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events()) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events()))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	event := Event{Verb: VerbItemAdded, ObjectType: ObjectTypeItem, ObjectID: "1"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter without real hooks to be disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := capture.Events()
	if len(events) != 1 || events[0].Channel != "formlist" {
		t.Fatalf("expected default channel applied, got %+v", events)
	}
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbItemAdded,
		ObjectType: ObjectTypeItem,
		ObjectID:   "1",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got := capture.Events()[0]
	if got.Channel != "custom" || !got.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit channel and time preserved, got %+v", got)
	}
}

func TestCaptureHookReset(t *testing.T) {
	capture := &CaptureHook{Err: errors.New("stored")}
	if err := capture.Notify(context.Background(), Event{Verb: VerbReset}); err == nil {
		t.Fatalf("expected configured error")
	}
	capture.Reset()
	if len(capture.Verbs()) != 0 {
		t.Fatalf("expected no events after reset")
	}
}

func TestLogHookWritesEventFields(t *testing.T) {
	var buf bytes.Buffer
	hook := LogHook{Logger: zerolog.New(&buf)}

	event := BuildItemMovedEvent(ListEventInput{List: "recipients", ItemID: "abc", From: 2, To: 0, ActorID: "actor-1"})
	if err := hook.Notify(context.Background(), NormalizeEvent(event)); err != nil {
		t.Fatalf("notify: %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["verb"] != VerbItemMoved || line["list"] != "recipients" || line["object_id"] != "abc" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["actor_id"] != "actor-1" || line["from"] != float64(2) || line["message"] != "list activity" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestEmitterChannel(t *testing.T) {
	var nilEmitter *Emitter
	if nilEmitter.Enabled() || nilEmitter.Channel() != DefaultChannel {
		t.Fatalf("expected nil emitter to be disabled with default channel")
	}
	if got := NewEmitter(nil, Config{Channel: " audit "}).Channel(); got != "audit" {
		t.Fatalf("expected trimmed channel, got %q", got)
	}
}
