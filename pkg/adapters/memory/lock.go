package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/ruleflow/pkg/ports"
)

// lockEntry holds the slot and the reference count.
type lockEntry struct {
	slot chan struct{}
	refs int
}

// Locker implements ports.DistributedLocker within a single process.
// Entries are reference counted so unused keys do not accumulate.
// The ttl is ignored: a lock lives until it is released.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates a lock entry and increments its reference count.
func (l *Locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{slot: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	entry := l.acquire(key)

	select {
	case entry.slot <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-entry.slot
			l.release(key)
		})
		return nil
	}, nil
}

// active returns how many keys currently have holders or waiters.
func (l *Locker) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
