package loader

import (
	"sync"

	"github.com/matzehuels/tilerow/pkg/catalog"
)

// Bundle is the unit of work for one row: its refset (if any) and the image
// URLs known at catalog time.
type Bundle struct {
	Row        int
	RefsetID   string
	RefsetKind string
	ImageURLs  []string
}

// HasRefset reports whether the bundle needs a refset lookup.
func (b Bundle) HasRefset() bool {
	return catalog.HasRefset(b.RefsetID)
}

// Queue is a FIFO of bundles shared by the workers. The lock is held only
// for a single push or pop.
type Queue struct {
	mu    sync.Mutex
	items []Bundle
}

// NewQueue creates a queue holding bundles in order.
func NewQueue(bundles ...Bundle) *Queue {
	q := &Queue{}
	for _, b := range bundles {
		q.PushBack(b)
	}
	return q
}

// PushBack appends b.
func (q *Queue) PushBack(b Bundle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, b)
}

// PopFront removes and returns the oldest bundle. It never blocks; the
// second result is false when the queue is empty.
func (q *Queue) PopFront() (Bundle, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Bundle{}, false
	}
	b := q.items[0]
	q.items[0] = Bundle{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return b, true
}

// Len returns the number of queued bundles.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
