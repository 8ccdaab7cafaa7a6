package domain

import "sync"

// internTable is a process-wide insert-if-absent cache. Entries are inserted
// lazily and never evicted, so an interned value stays canonical for the
// lifetime of the process.
type internTable[T any] struct {
	mu sync.Mutex
	m  map[string]T
}

func newInternTable[T any]() *internTable[T] {
	return &internTable[T]{m: make(map[string]T)}
}

// intern returns the canonical value for key, building it on first use.
// Concurrent callers with the same key always observe the same value.
func (t *internTable[T]) intern(key string, build func() T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.m[key]; ok {
		return v
	}
	v := build()
	t.m[key] = v
	return v
}
