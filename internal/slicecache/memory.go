package slicecache

import (
	"time"

	"jobprofit/internal/cache"
)

// MemoryStore keeps entries in an in-process LRU. Meant for tests and
// ephemeral runs; the freshness policy still lives in Cache, so the LRU's
// own TTL only bounds memory.
type MemoryStore struct {
	lru  *cache.LRUCache[Entry]
	keys map[string]Key
}

func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		lru:  cache.NewLRUCache[Entry](maxSize, ttl),
		keys: make(map[string]Key),
	}
}

func (s *MemoryStore) Get(key Key) (Entry, bool, error) {
	entry, ok := s.lru.Get(key.String())
	return entry, ok, nil
}

func (s *MemoryStore) Put(key Key, entry Entry) error {
	s.lru.Set(key.String(), entry)
	s.keys[key.String()] = key
	return nil
}

func (s *MemoryStore) Delete(key Key) error {
	s.lru.Delete(key.String())
	delete(s.keys, key.String())
	return nil
}

func (s *MemoryStore) Keys() ([]Key, error) {
	var keys []Key
	for _, id := range s.lru.Keys() {
		if key, ok := s.keys[id]; ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
