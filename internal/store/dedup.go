// Package store provides the seen-URI set backing recommendation-queue
// deduplication, using a Bloom filter fast path in front of an
// LRU-bounded exact set.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SeenURIs is a thread-safe set of track URIs already admitted to a
// recommendation set. The Bloom filter answers the common "never seen"
// case without touching the map; the LRU bounds memory when one set
// outlives many expansions.
type SeenURIs struct {
	uris              map[string]struct{}
	bloom             *bloom.BloomFilter
	lru               *lru.Cache[string, struct{}]
	mutex             sync.RWMutex
	capacity          int
	falsePositiveRate float64
}

// NewSeenURIs creates a seen-set with the given capacity and Bloom filter
// false positive rate.
func NewSeenURIs(capacity int, falsePositiveRate float64) *SeenURIs {
	if capacity <= 0 {
		capacity = 1
	}

	s := &SeenURIs{
		uris:              make(map[string]struct{}),
		bloom:             bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
	}

	// The LRU drives eviction: when it drops its oldest entry the exact
	// set follows. The callback runs under the same lock as Add.
	s.lru, _ = lru.NewWithEvict[string, struct{}](capacity, func(key string, _ struct{}) {
		delete(s.uris, key)
	})

	return s
}

// Has reports whether the URI was already admitted.
func (s *SeenURIs) Has(uri string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.bloom.TestString(uri) {
		return false
	}

	_, exists := s.uris[uri]
	return exists
}

// Add admits a URI to the set.
func (s *SeenURIs) Add(uri string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.uris[uri]; exists {
		return
	}

	s.uris[uri] = struct{}{}
	s.bloom.AddString(uri)
	s.lru.Add(uri, struct{}{})
}

// Size returns the number of URIs currently stored.
func (s *SeenURIs) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.uris)
}

// Clear empties the set.
func (s *SeenURIs) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.lru.Purge()
	s.uris = make(map[string]struct{})
	s.bloom = bloom.NewWithEstimates(uint(s.capacity), s.falsePositiveRate)
	// The Bloom filter doesn't support removal, so eviction keeps stale
	// bits; they only cost a map lookup on the slow path.
}
