// Package keycache holds unwrapped conversation keys for the lifetime of a
// session. It is an explicitly owned object rather than package state so a
// session end can drop all key material at once.
package keycache

import (
	"sync"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

// Cache maps conversation ids to unwrapped symmetric keys. One entry per
// open conversation per session; no eviction at that scale.
type Cache struct {
	mu       sync.Mutex
	keys     map[domain.ConversationID][]byte
	inflight map[domain.ConversationID]chan struct{}
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		keys:     make(map[domain.ConversationID][]byte),
		inflight: make(map[domain.ConversationID]chan struct{}),
	}
}

// Put stores a copy of key for id.
func (c *Cache) Put(id domain.ConversationID, key []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[id] = append([]byte(nil), key...)
}

// Get returns a copy of the cached key for id, if present.
func (c *Cache) Get(id domain.ConversationID) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.keys[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), key...), true
}

// Do returns the cached key for id, or runs fetch to produce it. Concurrent
// callers missing the cache share one fetch; duplicate unwraps are benign
// but wasteful.
func (c *Cache) Do(id domain.ConversationID, fetch func() ([]byte, error)) ([]byte, error) {
	for {
		c.mu.Lock()
		if key, ok := c.keys[id]; ok {
			out := append([]byte(nil), key...)
			c.mu.Unlock()
			return out, nil
		}
		if waiting, ok := c.inflight[id]; ok {
			c.mu.Unlock()
			<-waiting
			// Re-check: the fetch may have failed, in which case we retry
			// as the new leader.
			continue
		}
		done := make(chan struct{})
		c.inflight[id] = done
		c.mu.Unlock()

		key, err := fetch()

		c.mu.Lock()
		delete(c.inflight, id)
		if err == nil {
			c.keys[id] = append([]byte(nil), key...)
		}
		c.mu.Unlock()
		close(done)

		if err != nil {
			return nil, err
		}
		return append([]byte(nil), key...), nil
	}
}

// Clear wipes and drops all cached key material. Called on logout/session
// end so keys never outlive their owning session.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, key := range c.keys {
		crypto.Wipe(key)
		delete(c.keys, id)
	}
}
