package unused

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// usedSet records which definition ordinals were found to be used.
// Workers write concurrently; the report is assembled after they finish.
type usedSet struct {
	mu     sync.RWMutex
	bitmap *roaring.Bitmap
}

func newUsedSet() *usedSet {
	return &usedSet{bitmap: roaring.New()}
}

// Mark records ordinal i as used.
func (s *usedSet) Mark(i uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bitmap.Add(i)
}

// Used reports whether ordinal i was marked.
func (s *usedSet) Used(i uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bitmap.Contains(i)
}

// Count returns how many ordinals were marked.
func (s *usedSet) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bitmap.GetCardinality()
}

// Unused returns the ordinals in [0, n) that were never marked, ascending.
func (s *usedSet) Unused(n uint32) []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := roaring.New()
	all.AddRange(0, uint64(n))
	all.AndNot(s.bitmap)
	return all.ToArray()
}
