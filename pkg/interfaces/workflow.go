package interfaces

import (
	"context"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/google/uuid"
)

// ArticleStore persists per-article workflow state. Implementations must
// make CompareAndSetStage atomic with respect to other writers of the same
// article.
type ArticleStore interface {
	// GetState returns the workflow state for the article or a not found error.
	GetState(ctx context.Context, articleID uuid.UUID) (*domain.ArticleWorkflowState, error)
	// CompareAndSetStage writes next only when the persisted stage equals
	// expected and the article is unlocked. It returns false when either
	// condition did not hold.
	CompareAndSetStage(ctx context.Context, articleID uuid.UUID, expected, next domain.Stage, at time.Time) (bool, error)
	// SetLocked updates the lock flag without touching the stage.
	SetLocked(ctx context.Context, articleID uuid.UUID, locked bool) error
}

// AuditLog appends immutable workflow events and lists them newest first.
type AuditLog interface {
	Append(ctx context.Context, event domain.WorkflowEvent) error
	List(ctx context.Context, articleID uuid.UUID, limit int) ([]domain.WorkflowEvent, error)
}

// EventSink receives workflow events after they were durably recorded.
// Delivery is best effort.
type EventSink interface {
	Publish(ctx context.Context, event domain.WorkflowEvent) error
}

// TransitionObserver is notified of every workflow outcome, typically to
// export metrics.
type TransitionObserver interface {
	ObserveTransition(action string, outcome string, elapsed time.Duration)
	ObserveLock(locked bool, outcome string)
}
