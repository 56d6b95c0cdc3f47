package source

import (
	"container/list"
	"sync"
	"time"
)

// cache is a TTL-bounded LRU over fetched resource bytes, keyed by the
// resolved locator address. Readers never observe a partially written
// entry: bytes are stored whole under the lock and never mutated after.
type cache struct {
	ttl     time.Duration
	maxSize int

	mu      sync.Mutex
	lruList *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key     string
	data    []byte
	expires time.Time
}

func newCache(ttl time.Duration, maxSize int) *cache {
	if maxSize <= 0 {
		maxSize = 32
	}
	return &cache{
		ttl:     ttl,
		maxSize: maxSize,
		lruList: list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *cache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ent := elem.Value.(*cacheEntry)
	if time.Now().After(ent.expires) {
		c.lruList.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	c.lruList.MoveToFront(elem)
	return ent.data, true
}

func (c *cache) put(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		elem.Value = &cacheEntry{key: key, data: data, expires: time.Now().Add(c.ttl)}
		c.lruList.MoveToFront(elem)
		return
	}
	c.entries[key] = c.lruList.PushFront(&cacheEntry{
		key:     key,
		data:    data,
		expires: time.Now().Add(c.ttl),
	})
	for c.lruList.Len() > c.maxSize {
		back := c.lruList.Back()
		if back == nil {
			break
		}
		c.lruList.Remove(back)
		delete(c.entries, back.Value.(*cacheEntry).key)
	}
}
