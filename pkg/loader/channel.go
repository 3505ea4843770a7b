package loader

import (
	"errors"
	"sync"

	"github.com/matzehuels/tilerow/pkg/texture"
)

// ErrReceiverClosed is returned by [Completions.Send] once the consumer has
// gone away. Workers treat it as a shutdown signal.
var ErrReceiverClosed = errors.New("loader: completion receiver closed")

// EventKind distinguishes completion events.
type EventKind int

const (
	// EventImageLoaded carries a freshly uploaded tile texture.
	EventImageLoaded EventKind = iota
	// EventRefsetFailed marks a row whose refset could not be resolved.
	EventRefsetFailed
	// EventBundleDone is sent after a worker finished a row's bundle.
	EventBundleDone
)

func (k EventKind) String() string {
	switch k {
	case EventImageLoaded:
		return "image_loaded"
	case EventRefsetFailed:
		return "refset_failed"
	case EventBundleDone:
		return "bundle_done"
	default:
		return "unknown"
	}
}

// Event reports progress on one row. Texture is set only for
// EventImageLoaded; ownership of the handle passes to the receiver.
type Event struct {
	Row     int
	Kind    EventKind
	Texture texture.Handle
}

// Completions is an unbounded multi-producer, single-consumer event queue.
// Send never blocks, so a slow consumer cannot stall the workers.
type Completions struct {
	mu     sync.Mutex
	events []Event
	closed bool
	notify chan struct{}
}

// NewCompletions creates an open channel.
func NewCompletions() *Completions {
	return &Completions{notify: make(chan struct{}, 1)}
}

// Send enqueues ev. It fails with [ErrReceiverClosed] after Close.
func (c *Completions) Send(ev Event) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrReceiverClosed
	}
	c.events = append(c.events, ev)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
	return nil
}

// TryReceive returns the oldest pending event without blocking. The second
// result is false when nothing is pending.
func (c *Completions) TryReceive() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return Event{}, false
	}
	ev := c.events[0]
	c.events = c.events[1:]
	if len(c.events) == 0 {
		c.events = nil
	}
	return ev, true
}

// Drain hands every pending event to fn and returns how many there were.
// Events sent while draining are picked up in the same call.
func (c *Completions) Drain(fn func(Event)) int {
	n := 0
	for {
		ev, ok := c.TryReceive()
		if !ok {
			return n
		}
		fn(ev)
		n++
	}
}

// Notify returns a channel that receives a value after Send. Several sends
// may coalesce into one notification.
func (c *Completions) Notify() <-chan struct{} {
	return c.notify
}

// Len returns the number of pending events.
func (c *Completions) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Close marks the receiver as gone and returns the events that were never
// received, so their textures can be released. Later calls return nil.
func (c *Completions) Close() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	pending := c.events
	c.events = nil
	return pending
}

// Closed reports whether Close has been called.
func (c *Completions) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
