package loader

import (
	"sync"
	"testing"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(Bundle{Row: 0}, Bundle{Row: 1})
	q.PushBack(Bundle{Row: 2})
	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	for want := range 3 {
		b, ok := q.PopFront()
		if !ok {
			t.Fatalf("PopFront() empty at %d", want)
		}
		if b.Row != want {
			t.Errorf("PopFront().Row = %d, want %d", b.Row, want)
		}
	}
}

func TestQueuePopEmptyIsIdempotent(t *testing.T) {
	q := NewQueue()
	for range 3 {
		if _, ok := q.PopFront(); ok {
			t.Fatal("PopFront() on empty queue returned a bundle")
		}
	}
	q.PushBack(Bundle{Row: 7})
	if b, ok := q.PopFront(); !ok || b.Row != 7 {
		t.Errorf("PopFront() = %v, %v after refill", b, ok)
	}
}

func TestQueueConcurrentPopsAreExclusive(t *testing.T) {
	const n = 500
	q := NewQueue()
	for i := range n {
		q.PushBack(Bundle{Row: i})
	}

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				b, ok := q.PopFront()
				if !ok {
					return
				}
				mu.Lock()
				seen[b.Row]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("popped %d distinct bundles, want %d", len(seen), n)
	}
	for row, count := range seen {
		if count != 1 {
			t.Errorf("bundle %d popped %d times", row, count)
		}
	}
}

func TestBundleHasRefset(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"null", false},
		{"abc", true},
	}
	for _, tt := range tests {
		if got := (Bundle{RefsetID: tt.id}).HasRefset(); got != tt.want {
			t.Errorf("HasRefset(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
