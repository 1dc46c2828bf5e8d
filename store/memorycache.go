package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback for when redis is not configured.
// Same expiry semantics as RedisStore; expired entries are swept lazily on
// access.
type MemoryStore[T any] struct {
	mu      sync.Mutex
	entries map[string]memoryEntry[T]
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

func NewMemoryStore[T any](opts ...StoreOption[T]) *MemoryStore[T] {
	store := &MemoryStore[T]{
		entries: make(map[string]memoryEntry[T]),
		ttl:     _DEFAULT_TTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt.applyToMemory(store)
	}
	return store
}

func (store *MemoryStore[T]) Get(_ context.Context, key string) (*T, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.clearExpired()

	entry, ok := store.entries[key]
	if !ok {
		return nil, nil
	}
	value := entry.value
	return &value, nil
}

func (store *MemoryStore[T]) Put(_ context.Context, key string, value *T) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.entries[key] = memoryEntry[T]{
		value:   *value,
		expires: store.now().Add(store.ttl),
	}
	return nil
}

func (store *MemoryStore[T]) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.entries, key)
	return nil
}

func (store *MemoryStore[T]) Close() error {
	return nil
}

// callers hold the lock
func (store *MemoryStore[T]) clearExpired() {
	current := store.now()
	for key, entry := range store.entries {
		if current.After(entry.expires) {
			delete(store.entries, key)
		}
	}
}
