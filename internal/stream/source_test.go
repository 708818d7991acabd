package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func sseHandler(frames []string, hold bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream; charset=UTF-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()
		for _, f := range frames {
			fmt.Fprint(w, f)
			flusher.Flush()
		}
		if hold {
			<-r.Context().Done()
		}
	}
}

type recorder struct {
	mu     sync.Mutex
	opened int
	data   []string
	got    chan string
}

func newRecorder() *recorder {
	return &recorder{got: make(chan string, 16)}
}

func (r *recorder) handler() Handler {
	return Handler{
		OnOpen: func() {
			r.mu.Lock()
			r.opened++
			r.mu.Unlock()
		},
		OnMessage: func(data string) {
			r.mu.Lock()
			r.data = append(r.data, data)
			r.mu.Unlock()
			r.got <- data
		},
	}
}

func TestSSESourceDeliversUnnamedEventsUntilEOF(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{
		"data: A\n\n",
		"event: ping\ndata: skipped\n\n",
		"event: message\ndata: B\n\n",
		": comment\n\n",
		"data: C\n\n",
	}, false))
	defer srv.Close()

	rec := newRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := SSESource{HTTPClient: srv.Client()}.Subscribe(ctx, srv.URL+"/sse", rec.handler())
	if err != nil {
		t.Fatalf("Subscribe returned %v, want nil at end of stream", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.opened != 1 {
		t.Fatalf("OnOpen called %d times, want 1", rec.opened)
	}
	if !reflect.DeepEqual(rec.data, []string{"A", "B", "C"}) {
		t.Fatalf("data = %v", rec.data)
	}
}

func TestSSESourceDeliversEventsLargerThan64KiB(t *testing.T) {
	big := strings.Repeat("q", 70<<10)
	srv := httptest.NewServer(sseHandler([]string{
		"data: " + big + "\n\n",
		"data: after\n\n",
	}, false))
	defer srv.Close()

	rec := newRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := (SSESource{HTTPClient: srv.Client()}).Subscribe(ctx, srv.URL, rec.handler()); err != nil {
		t.Fatalf("Subscribe returned %v, want nil at end of stream", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.data) != 2 || rec.data[0] != big || rec.data[1] != "after" {
		t.Fatalf("delivered %d payloads (first len %d), want the large one and \"after\"", len(rec.data), firstLen(rec.data))
	}
}

func TestSSESourceHonorsMaxEventSize(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{"data: " + strings.Repeat("q", 4<<10) + "\n\n"}, false))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := SSESource{HTTPClient: srv.Client(), MaxEventSize: 1 << 10}.Subscribe(ctx, srv.URL, newRecorder().handler())
	if err == nil {
		t.Fatal("expected error for event above MaxEventSize")
	}
}

func firstLen(data []string) int {
	if len(data) == 0 {
		return 0
	}
	return len(data[0])
}

func TestSSESourceRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := newRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := SSESource{HTTPClient: srv.Client()}.Subscribe(ctx, srv.URL, rec.handler())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("Subscribe err = %v, want 503 error", err)
	}
	if rec.opened != 0 {
		t.Fatalf("OnOpen called on rejected response")
	}
}

func TestSSESourceStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{"data: A\n\n"}, true))
	defer srv.Close()

	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- SSESource{HTTPClient: srv.Client()}.Subscribe(ctx, srv.URL, rec.handler())
	}()

	select {
	case got := <-rec.got:
		if got != "A" {
			t.Fatalf("first payload = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for payload")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}

func TestManagerOverRealStream(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{"data: A\n\n", "data: B\n\n", "data: C\n\n"}, false))
	defer srv.Close()

	m := NewManager(ManagerOptions{
		Source: SSESource{HTTPClient: srv.Client()},
		URL:    srv.URL + "/sse",
	})
	defer m.Close()

	id, err := m.Enable(context.Background())
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}

	var kinds []EventKind
	var data []string
	for {
		ev := nextEvent(t, m)
		if ev.SubscriptionID != id {
			t.Fatalf("event for %q, want %q", ev.SubscriptionID, id)
		}
		kinds = append(kinds, ev.Kind)
		if ev.Kind == EventMessage {
			data = append(data, ev.Data)
		}
		if ev.Kind == EventClosed {
			break
		}
	}
	if kinds[0] != EventOpen {
		t.Fatalf("first kind = %v, want open", kinds[0])
	}
	if !reflect.DeepEqual(data, []string{"A", "B", "C"}) {
		t.Fatalf("data = %v", data)
	}
}
