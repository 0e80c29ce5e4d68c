// Package lock serializes mutating engine operations per service.  Two
// concurrent reserves on the same seat must never both observe Available and
// both commit Taken, so every load->validate->mutate->commit sequence runs
// under an exclusive per-service lock.
package lock

import (
	"context"
	"sync"
)

// Locker grants exclusive access to a key.  Acquire blocks until the lock is
// held or ctx is done; the returned release function must be called exactly
// once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyedMutex is the in-process Locker: one mutex per key, created lazily.
// Sufficient for the single-instance deployment; multi-instance setups use
// the Redis locker instead.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex returns an empty keyed mutex set.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the key's mutex.  The context is checked before blocking;
// once Lock is entered the wait is uninterruptible, which is acceptable for
// the short critical sections the engine holds.
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}
