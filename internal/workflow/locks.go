package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// articleLocks hands out one mutex per article. Entries are reference
// counted and dropped once no caller holds or waits on them, so the map only
// grows with the number of articles in flight.
type articleLocks struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*articleLock
}

type articleLock struct {
	mu   sync.Mutex
	refs int
}

func newArticleLocks() *articleLocks {
	return &articleLocks{entries: make(map[uuid.UUID]*articleLock)}
}

// lock blocks until the article's mutex is held and returns the release func.
func (l *articleLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &articleLock{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}

func (l *articleLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
