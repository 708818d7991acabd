package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quotes-cli/internal/stream"
)

type fakeTail struct {
	events   chan stream.Event
	disabled int
}

func newFakeTail(evs ...stream.Event) *fakeTail {
	ch := make(chan stream.Event, len(evs)+1)
	for _, ev := range evs {
		ch <- ev
	}
	return &fakeTail{events: ch}
}

func (f *fakeTail) Enable(context.Context) (string, error) { return "sub-1", nil }

func (f *fakeTail) Disable() bool {
	f.disabled++
	return true
}

func (f *fakeTail) Events() <-chan stream.Event { return f.events }

func msgEvent(id, data string) stream.Event {
	return stream.Event{Kind: stream.EventMessage, SubscriptionID: id, Data: data}
}

func TestTailStopsAfterCount(t *testing.T) {
	fs := newFakeTail(
		stream.Event{Kind: stream.EventOpen, SubscriptionID: "sub-1"},
		msgEvent("old", "stale"),
		msgEvent("sub-1", "A"),
		msgEvent("sub-1", "B"),
		msgEvent("sub-1", "C"),
	)
	var out bytes.Buffer
	if err := tail(context.Background(), fs, &out, tailOptions{Count: 2}); err != nil {
		t.Fatalf("tail returned %v", err)
	}
	if got, want := out.String(), "A\nB\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if fs.disabled != 1 {
		t.Fatalf("Disable called %d times, want 1", fs.disabled)
	}
}

func TestTailJSONLines(t *testing.T) {
	fs := newFakeTail(
		stream.Event{Kind: stream.EventOpen, SubscriptionID: "sub-1"},
		msgEvent("sub-1", "A"),
		stream.Event{Kind: stream.EventClosed, SubscriptionID: "sub-1", Err: stream.ErrStreamEnded},
	)
	var out bytes.Buffer
	err := tail(context.Background(), fs, &out, tailOptions{JSON: true})
	if !errors.Is(err, stream.ErrStreamEnded) {
		t.Fatalf("tail error = %v, want ErrStreamEnded", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 json lines, got %d: %q", len(lines), out.String())
	}
	var types []string
	for _, line := range lines {
		var ev jsonEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		types = append(types, ev.Type)
		if ev.Type == "message" && (ev.Data != "A" || ev.Index != 1) {
			t.Fatalf("unexpected message event %+v", ev)
		}
		if ev.Type == "closed" && (ev.Error == nil || ev.Error.Message != stream.ErrStreamEnded.Error()) {
			t.Fatalf("closed event missing error: %+v", ev)
		}
	}
	if strings.Join(types, ",") != "open,message,closed" {
		t.Fatalf("event types = %v", types)
	}
}

func TestTailWrapsTransportError(t *testing.T) {
	boom := errors.New("connection reset")
	fs := newFakeTail(stream.Event{Kind: stream.EventClosed, SubscriptionID: "sub-1", Err: boom})
	err := tail(context.Background(), fs, &bytes.Buffer{}, tailOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("tail error = %v, want wrapped %v", err, boom)
	}
}

func TestTailStopsOnContextDone(t *testing.T) {
	fs := newFakeTail()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tail(ctx, fs, &bytes.Buffer{}, tailOptions{}); err != nil {
		t.Fatalf("tail returned %v after cancel", err)
	}
	if fs.disabled != 1 {
		t.Fatalf("Disable called %d times, want 1", fs.disabled)
	}
}

func TestTailOverHTTPStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sse" {
			http.NotFound(w, r)
			return
		}
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, q := range []string{"A", "B", "C"} {
			fmt.Fprintf(w, "data: %s\n\n", q)
			flusher.Flush()
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	manager := stream.NewManager(stream.ManagerOptions{URL: srv.URL + "/sse"})
	defer manager.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	if err := tail(ctx, manager, &out, tailOptions{Count: 3}); err != nil {
		t.Fatalf("tail returned %v", err)
	}
	if got, want := out.String(), "A\nB\nC\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if _, ok := manager.Active(); ok {
		t.Fatal("subscription still active after tail returned")
	}
}
