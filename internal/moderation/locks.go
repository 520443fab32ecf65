package moderation

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedLocks serializes work per key; different keys never contend. An
// entry lives only while someone holds or waits for it.
type keyedLocks[K comparable] struct {
	m *xsync.MapOf[K, *lockEntry]
}

func newKeyedLocks[K comparable]() *keyedLocks[K] {
	return &keyedLocks[K]{m: xsync.NewMapOf[K, *lockEntry]()}
}

func (l *keyedLocks[K]) lock(key K) func() {
	entry, _ := l.m.Compute(key, func(old *lockEntry, loaded bool) (*lockEntry, bool) {
		if !loaded {
			old = &lockEntry{}
		}
		old.refs++
		return old, false
	})
	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			l.m.Compute(key, func(old *lockEntry, loaded bool) (*lockEntry, bool) {
				if !loaded {
					return nil, true
				}
				old.refs--
				return old, old.refs == 0
			})
		})
	}
}

func (l *keyedLocks[K]) size() int {
	return l.m.Size()
}
