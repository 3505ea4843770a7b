package loader

import (
	"sync"
	"testing"
	"time"
)

func TestCompletionsOrder(t *testing.T) {
	c := NewCompletions()
	if _, ok := c.TryReceive(); ok {
		t.Fatal("TryReceive() on empty channel returned an event")
	}
	for i := range 3 {
		if err := c.Send(Event{Row: i, Kind: EventImageLoaded}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	for want := range 3 {
		ev, ok := c.TryReceive()
		if !ok || ev.Row != want {
			t.Errorf("TryReceive() = %v, %v, want row %d", ev, ok, want)
		}
	}
}

func TestCompletionsDrain(t *testing.T) {
	c := NewCompletions()
	for i := range 4 {
		c.Send(Event{Row: i})
	}
	var rows []int
	n := c.Drain(func(ev Event) { rows = append(rows, ev.Row) })
	if n != 4 || len(rows) != 4 {
		t.Fatalf("Drain() = %d (%v), want 4", n, rows)
	}
	if n := c.Drain(func(Event) {}); n != 0 {
		t.Errorf("second Drain() = %d, want 0", n)
	}
}

func TestCompletionsClose(t *testing.T) {
	c := NewCompletions()
	c.Send(Event{Row: 1, Kind: EventImageLoaded, Texture: 9})

	pending := c.Close()
	if len(pending) != 1 || pending[0].Texture != 9 {
		t.Errorf("Close() = %v, want the undelivered event", pending)
	}
	if !c.Closed() {
		t.Error("Closed() = false")
	}
	if err := c.Send(Event{}); err != ErrReceiverClosed {
		t.Errorf("Send after Close: err = %v, want ErrReceiverClosed", err)
	}
	if again := c.Close(); again != nil {
		t.Errorf("second Close() = %v, want nil", again)
	}
}

func TestCompletionsNotify(t *testing.T) {
	c := NewCompletions()
	c.Send(Event{})
	c.Send(Event{})
	select {
	case <-c.Notify():
	case <-time.After(time.Second):
		t.Fatal("no notification after Send")
	}
	select {
	case <-c.Notify():
		t.Error("coalesced sends produced a second notification")
	default:
	}
}

func TestCompletionsConcurrentSenders(t *testing.T) {
	const senders, per = 8, 200
	c := NewCompletions()
	var wg sync.WaitGroup
	for s := range senders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range per {
				c.Send(Event{Row: s})
			}
		}()
	}

	received := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		received += c.Drain(func(Event) {})
		select {
		case <-done:
			received += c.Drain(func(Event) {})
			if received != senders*per {
				t.Fatalf("received %d events, want %d", received, senders*per)
			}
			return
		default:
		}
	}
}

func TestEventKindString(t *testing.T) {
	tests := map[EventKind]string{
		EventImageLoaded:  "image_loaded",
		EventRefsetFailed: "refset_failed",
		EventBundleDone:   "bundle_done",
		EventKind(42):     "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
