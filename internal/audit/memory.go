package audit

import (
	"context"
	"sync"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

// MemoryLog keeps workflow events in memory. It is used by tests and the
// memory storage provider.
type MemoryLog struct {
	mu     sync.Mutex
	events map[uuid.UUID][]domain.WorkflowEvent
	err    error
}

var _ interfaces.AuditLog = (*MemoryLog)(nil)

// NewMemoryLog constructs an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{events: make(map[uuid.UUID][]domain.WorkflowEvent)}
}

// Append stores the supplied event.
func (l *MemoryLog) Append(_ context.Context, event domain.WorkflowEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.events[event.ArticleID] = append(l.events[event.ArticleID], cloneEvent(event))
	return nil
}

// List returns up to limit events for the article, newest first. A
// non-positive limit returns every event.
func (l *MemoryLog) List(_ context.Context, articleID uuid.UUID, limit int) ([]domain.WorkflowEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := l.events[articleID]
	n := len(stored)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.WorkflowEvent, 0, n)
	for i := len(stored) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, cloneEvent(stored[i]))
	}
	return out, nil
}

// Events returns every stored event for the article in append order.
func (l *MemoryLog) Events(articleID uuid.UUID) []domain.WorkflowEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored := l.events[articleID]
	out := make([]domain.WorkflowEvent, len(stored))
	for i, event := range stored {
		out[i] = cloneEvent(event)
	}
	return out
}

// Count returns the number of events stored for the article.
func (l *MemoryLog) Count(articleID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events[articleID])
}

// Fail configures the log to return the supplied error on subsequent Append
// calls. Passing nil restores normal behaviour.
func (l *MemoryLog) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func cloneEvent(event domain.WorkflowEvent) domain.WorkflowEvent {
	if event.ToStage != nil {
		event.ToStage = domain.StagePtr(*event.ToStage)
	}
	return event
}
