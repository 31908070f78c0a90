package audit

import (
	"context"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

// Fanout appends to a durable primary log and then forwards the event to
// best-effort sinks. Only the primary decides whether Append failed.
type Fanout struct {
	primary interfaces.AuditLog
	sinks   []interfaces.EventSink
	logger  interfaces.Logger
}

var _ interfaces.AuditLog = (*Fanout)(nil)

// FanoutOption configures a Fanout.
type FanoutOption func(*Fanout)

// WithSink adds a best-effort sink.
func WithSink(sink interfaces.EventSink) FanoutOption {
	return func(f *Fanout) {
		if sink != nil {
			f.sinks = append(f.sinks, sink)
		}
	}
}

// WithFanoutLogger sets the logger used for sink failures.
func WithFanoutLogger(logger interfaces.Logger) FanoutOption {
	return func(f *Fanout) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFanout wraps primary.
func NewFanout(primary interfaces.AuditLog, opts ...FanoutOption) *Fanout {
	f := &Fanout{primary: primary, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fanout) Append(ctx context.Context, event domain.WorkflowEvent) error {
	if err := f.primary.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			f.logger.Warn("audit.sink.publish_failed",
				"article_id", event.ArticleID, "action", event.Action, "error", err)
		}
	}
	return nil
}

func (f *Fanout) List(ctx context.Context, articleID uuid.UUID, limit int) ([]domain.WorkflowEvent, error) {
	return f.primary.List(ctx, articleID, limit)
}
