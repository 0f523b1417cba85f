package lease

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const leaseKey = "session"

// MemoryLease keeps the lease in process. Good for a single instance.
type MemoryLease struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryLease() *MemoryLease {
	return &MemoryLease{
		cache: cache.New(cache.NoExpiration, time.Minute),
	}
}

func (l *MemoryLease) Acquire(_ context.Context, holder string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.cache.Add(leaseKey, holder, ttl); err != nil {
		// Re-acquiring our own lease just extends it
		if current, ok := l.current(); ok && current == holder {
			l.cache.Set(leaseKey, holder, ttl)
			return true, nil
		}
		return false, nil
	}
	return true, nil
}

func (l *MemoryLease) Refresh(_ context.Context, holder string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if current, ok := l.current(); !ok || current != holder {
		return false, nil
	}
	l.cache.Set(leaseKey, holder, ttl)
	return true, nil
}

func (l *MemoryLease) Release(_ context.Context, holder string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if current, ok := l.current(); ok && current == holder {
		l.cache.Delete(leaseKey)
	}
	return nil
}

func (l *MemoryLease) Holder(_ context.Context) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	holder, ok := l.current()
	return holder, ok, nil
}

func (l *MemoryLease) current() (string, bool) {
	if x, found := l.cache.Get(leaseKey); found {
		return x.(string), true
	}
	return "", false
}
