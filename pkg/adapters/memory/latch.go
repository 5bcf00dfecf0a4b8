package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/gmboard/pkg/ports"
)

// Latch implements ports.Latch in memory.
// Safe for concurrent use. The TTL is ignored: an in-process holder always releases.
type Latch struct {
	held map[string]uint64
	next uint64
	mu   sync.Mutex
}

// NewLatch creates a new in-memory latch.
func NewLatch() *Latch {
	return &Latch{
		held: make(map[string]uint64),
	}
}

// TryAcquire marks key as busy if it is free.
func (l *Latch) TryAcquire(ctx context.Context, key string, ttl time.Duration) (ports.ReleaseFunc, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.next++
	token := l.next
	l.held[key] = token

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key] == token {
			delete(l.held, key)
		}
		return nil
	}, true, nil
}

// Held reports whether key is currently latched.
func (l *Latch) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}
