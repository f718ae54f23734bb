// Package ttlstore is the short-lived in-memory result cache: entries expire
// after a fixed TTL and a max-entry bound evicts oldest-inserted entries
// first (insertion order, not LRU access order).
package ttlstore

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gtsearch/parcel-risk/internal/observability"
)

type entry struct {
	val      []byte
	inserted time.Time
	seq      uint64
}

type queued struct {
	key string
	seq uint64
}

type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	queue   []queued
	nextSeq uint64

	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
}

type Option func(*Store)

// WithClock injects a fake clock for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func New(ttl time.Duration, maxEntries int, opts ...Option) *Store {
	s := &Store{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the cached value, treating entries older than the TTL as
// absent and deleting them lazily.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		observability.IncCacheMiss("result")
		return nil, false
	}
	if s.clock.Now().Sub(e.inserted) >= s.ttl {
		delete(s.entries, key)
		observability.IncCacheMiss("result")
		return nil, false
	}
	observability.IncCacheHit("result")
	return e.val, true
}

// Set stores the value and enforces the max-entry bound by evicting
// oldest-inserted entries until back under the limit.
func (s *Store) Set(key string, val []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	s.entries[key] = entry{val: val, inserted: s.clock.Now(), seq: s.nextSeq}
	s.queue = append(s.queue, queued{key: key, seq: s.nextSeq})

	if s.maxEntries <= 0 {
		return
	}
	for len(s.entries) > s.maxEntries && len(s.queue) > 0 {
		head := s.queue[0]
		s.queue = s.queue[1:]
		// skip queue entries superseded by a later Set of the same key
		if cur, ok := s.entries[head.key]; ok && cur.seq == head.seq {
			delete(s.entries, head.key)
		}
	}

	// repeated Sets of the same key leave superseded queue slots behind;
	// compact once they dominate
	if len(s.queue) > 2*len(s.entries)+64 {
		live := s.queue[:0]
		for _, q := range s.queue {
			if cur, ok := s.entries[q.key]; ok && cur.seq == q.seq {
				live = append(live, q)
			}
		}
		s.queue = live
	}
}

// Len reports live (unexpired or not-yet-collected) entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
