// Package lock provides the keyed locks that serialize ledger writes per
// product: an in-process one for a single instance and a Redis one shared by
// several instances.
package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/erp/backoffice/internal/domain/shared"
)

// MemoryLocker is a keyed mutex. Entries are dropped once nobody holds or
// waits for them.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyLock)}
}

// Acquire blocks until key is free. When ctx ends first the result is a
// concurrency conflict, which makes the surrounding write retry.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.unref(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.unref(key, kl)
		return nil, fmt.Errorf("waiting for lock %s: %w", key, shared.ErrConcurrencyConflict)
	}
}

func (l *MemoryLocker) unref(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// Len returns the number of keys currently held or waited for
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
