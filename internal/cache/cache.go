// Package cache keeps fetched API records keyed by collection and record id.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Store is a keyed cache. Keys are slash separated; invalidating a key also drops
// every key nested under it, so "products" covers "products/<id>".
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Invalidate(key string)
}

// Key joins key segments with slashes.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

func covers(prefix, key string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}

type entry struct {
	value     any
	expiresAt time.Time
}

// Memory is an in-process Store with a per-entry TTL. A zero TTL keeps entries
// until they are invalidated.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if m.expired(e) {
		m.mu.Lock()
		// A Set may have replaced the entry since the read lock was released.
		if current, ok := m.entries[key]; ok && m.expired(current) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (m *Memory) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}

func (m *Memory) Set(key string, value any) {
	e := entry{value: value}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
}

func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	for k := range m.entries {
		if covers(key, k) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}

// Namespace scopes every key of store under "user/<id>" so records fetched with one
// account's token are never served to another.
func Namespace(store Store, userID string) Store {
	return namespaced{store: store, prefix: Key("user", userID)}
}

type namespaced struct {
	store  Store
	prefix string
}

func (n namespaced) Get(key string) (any, bool) { return n.store.Get(Key(n.prefix, key)) }
func (n namespaced) Set(key string, value any)  { n.store.Set(Key(n.prefix, key), value) }
func (n namespaced) Invalidate(key string)      { n.store.Invalidate(Key(n.prefix, key)) }

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(string) (any, bool) { return nil, false }
func (Nop) Set(string, any)        {}
func (Nop) Invalidate(string)      {}
