package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

// StateLister enumerates every persisted workflow state.
type StateLister interface {
	ListStates(ctx context.Context) ([]domain.ArticleWorkflowState, error)
}

// Drift describes an article whose stage is not backed by an accepted audit event.
type Drift struct {
	ArticleID     uuid.UUID    `json:"article_id"`
	Stage         domain.Stage `json:"stage"`
	RecordedStage domain.Stage `json:"recorded_stage"`
	LastEventAt   *time.Time   `json:"last_event_at,omitempty"`
}

// ReconcileReport summarises a reconciliation pass.
type ReconcileReport struct {
	Checked int       `json:"checked"`
	Drifts  []Drift   `json:"drifts"`
	RanAt   time.Time `json:"ran_at"`
}

// Reconciler detects stage writes whose audit append failed. It only
// reports; repairing is an operator decision.
type Reconciler struct {
	states StateLister
	audit  interfaces.AuditLog
	depth  int
	now    func() time.Time
	logger interfaces.Logger
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconcileDepth sets how many recent events are scanned per article.
func WithReconcileDepth(depth int) ReconcilerOption {
	return func(r *Reconciler) {
		if depth > 0 {
			r.depth = depth
		}
	}
}

// WithReconcileLogger sets the reconciler logger.
func WithReconcileLogger(logger interfaces.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReconcileClock overrides the clock stamped on reports.
func WithReconcileClock(clock func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewReconciler constructs a reconciler.
func NewReconciler(states StateLister, audit interfaces.AuditLog, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		states: states,
		audit:  audit,
		depth:  maxEventLimit,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run compares every article's stage with the target of its newest accepted
// audit event. Articles without accepted events are expected to be in Draft.
func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	states, err := r.states.ListStates(ctx)
	if err != nil {
		return nil, newError(ReasonStoreUnavailable, "list workflow states", err)
	}

	report := &ReconcileReport{RanAt: r.now(), Drifts: []Drift{}}
	for _, state := range states {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		events, err := r.audit.List(ctx, state.ArticleID, r.depth)
		if err != nil {
			return report, newError(ReasonAuditFailure, fmt.Sprintf("list audit events for %s", state.ArticleID), err)
		}
		report.Checked++

		recorded := domain.StageDraft
		var lastAt *time.Time
		for _, event := range events {
			if event.Accepted && event.ToStage != nil {
				recorded = *event.ToStage
				at := event.At
				lastAt = &at
				break
			}
		}
		if recorded == state.Stage {
			continue
		}
		report.Drifts = append(report.Drifts, Drift{
			ArticleID:     state.ArticleID,
			Stage:         state.Stage,
			RecordedStage: recorded,
			LastEventAt:   lastAt,
		})
		r.logger.Warn("workflow.reconcile.drift",
			"article_id", state.ArticleID, "stage", state.Stage, "recorded_stage", recorded)
	}

	r.logger.Info("workflow.reconcile.completed", "checked", report.Checked, "drifts", len(report.Drifts))
	return report, nil
}
