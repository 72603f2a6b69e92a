package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{EventType: "network_origin_changed", UserID: "u-1"})

	select {
	case ev := <-sink.Events():
		if ev.EventType != "network_origin_changed" || ev.UserID != "u-1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected event delivery")
	}
}

func TestDispatcherDisabledReturnsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}

	// Nil receivers are no-ops.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := sinkFunc(func(context.Context, Event) { <-block })

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event occupies the worker, one fills the buffer, the rest drop.
	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), Event{})
	}

	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected dropped events")
		}
		time.Sleep(time.Millisecond)
	}

	close(block)
	d.Close()
}

func TestDispatcherCloseDrainsBuffer(t *testing.T) {
	sink := NewChannelSink(16)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "network_origin_changed"})
	}
	d.Close()

	delivered := 0
	for {
		select {
		case <-sink.Events():
			delivered++
		default:
			if delivered != 5 {
				t.Fatalf("expected 5 events drained, got %d", delivered)
			}
			return
		}
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{EventType: "network_origin_changed", UserID: "u-1"})
	sink.Emit(context.Background(), Event{EventType: "network_origin_changed", UserID: "u-2"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var ev Event
	if err := json.Unmarshal(lines[0], &ev); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if ev.UserID != "u-1" {
		t.Fatalf("unexpected first event: %+v", ev)
	}
}

func TestWebhookSinkPostsJSON(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode body: %v", err)
		}
		received <- ev
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, time.Second)
	sink.Emit(context.Background(), Event{
		EventType:      "network_origin_changed",
		UserID:         "u-1",
		PreviousOrigin: "203.0.113.1",
		NewOrigin:      "198.51.100.7",
	})

	select {
	case ev := <-received:
		if ev.PreviousOrigin != "203.0.113.1" || ev.NewOrigin != "198.51.100.7" {
			t.Fatalf("unexpected origins: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected webhook delivery")
	}
}

func TestWebhookSinkSwallowsDeliveryFailure(t *testing.T) {
	sink := NewWebhookSink("http://127.0.0.1:1", 100*time.Millisecond)
	// Must not panic or block beyond the timeout.
	sink.Emit(context.Background(), Event{EventType: "network_origin_changed"})
}

type sinkFunc func(ctx context.Context, event Event)

func (f sinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }
