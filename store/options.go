package store

import "time"

// matches how long a clinician plausibly keeps one conversation going
const _DEFAULT_TTL = 30 * time.Minute

// StoreOption applies to either store flavor; options a flavor cannot honor
// are ignored there.
type StoreOption[T any] interface {
	applyToRedis(store *RedisStore[T])
	applyToMemory(store *MemoryStore[T])
}

type ttlOption[T any] struct {
	ttl time.Duration
}

func (opt ttlOption[T]) applyToRedis(store *RedisStore[T])   { store.ttl = opt.ttl }
func (opt ttlOption[T]) applyToMemory(store *MemoryStore[T]) { store.ttl = opt.ttl }

// WithTTL overrides the default entry expiry.
func WithTTL[T any](ttl time.Duration) StoreOption[T] {
	return ttlOption[T]{ttl}
}

type clockOption[T any] struct {
	now func() time.Time
}

func (opt clockOption[T]) applyToRedis(*RedisStore[T])       {} // redis owns expiry
func (opt clockOption[T]) applyToMemory(store *MemoryStore[T]) { store.now = opt.now }

// WithClock injects the clock used for memory-store expiry. Test hook.
func WithClock[T any](now func() time.Time) StoreOption[T] {
	return clockOption[T]{now}
}
