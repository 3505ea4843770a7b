package texture

import (
	"fmt"
	"sync"
)

// MemoryStore is a [Renderer] that keeps texture contents in memory. It backs
// the CLI (which has no GPU) and tests, and it tracks live handles so leaks
// on failure paths are observable.
type MemoryStore struct {
	mu       sync.Mutex
	next     Handle
	textures map[Handle]*Pixels
	released int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{textures: make(map[Handle]*Pixels)}
}

// Allocate reserves a new handle with no contents.
func (s *MemoryStore) Allocate() (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.textures[s.next] = nil
	return s.next, nil
}

// Upload stores a copy of p under h.
func (s *MemoryStore) Upload(h Handle, p Pixels) error {
	if err := p.Validate(); err != nil {
		return err
	}
	data := make([]byte, len(p.Data))
	copy(data, p.Data)
	p.Data = data

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.textures[h]; !ok {
		return fmt.Errorf("texture: upload to unknown handle %d", h)
	}
	s.textures[h] = &p
	return nil
}

// Release frees h.
func (s *MemoryStore) Release(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.textures[h]; ok {
		delete(s.textures, h)
		s.released++
	}
}

// Get returns the contents of h. The second result is false for unknown or
// not yet uploaded handles.
func (s *MemoryStore) Get(h Handle) (Pixels, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.textures[h]
	if !ok || p == nil {
		return Pixels{}, false
	}
	return *p, true
}

// Live returns the number of allocated, unreleased handles.
func (s *MemoryStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.textures)
}

// Released returns how many handles have been released.
func (s *MemoryStore) Released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Ensure MemoryStore implements Renderer.
var _ Renderer = (*MemoryStore)(nil)
