package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "cycle.completed", Data: map[string]string{}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: cycle.completed") {
			t.Errorf("missing event type in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishEngineEvent_TreeThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First document event should trigger tree.updated; a second one inside
	// the throttle window should not.
	b.PublishEngineEvent("document.updated", "a.md")
	b.PublishEngineEvent("document.updated", "b.md")

	time.Sleep(50 * time.Millisecond)
	treeCount := 0
	docCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "tree.updated") {
				treeCount++
			} else {
				docCount++
			}
		default:
			break loop
		}
	}

	if docCount != 2 {
		t.Errorf("document events = %d, want 2", docCount)
	}
	if treeCount != 1 {
		t.Errorf("tree events = %d, want 1 (throttled)", treeCount)
	}
}

func TestPublishEngineEvent_CycleKindsPassThrough(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishEngineEvent("cycle.skipped", "")

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: cycle.skipped") {
			t.Errorf("got %q", string(msg))
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishEngineEvent("document.updated", "x.md")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: document.updated") {
		t.Errorf("body missing event: %q", body)
	}
	if !strings.Contains(body, `"path":"x.md"`) {
		t.Errorf("body missing path: %q", body)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker(time.Second)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel should be closed")
	}
	if b.ClientCount() != 0 {
		t.Errorf("ClientCount after close = %d", b.ClientCount())
	}
}
